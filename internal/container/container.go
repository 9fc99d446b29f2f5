package container

import (
	"io"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"vision-assist/config"
	"vision-assist/internal/api"
	app "vision-assist/internal/application"
	"vision-assist/internal/domain/port"
	"vision-assist/internal/geometry"
	"vision-assist/internal/infrastructure/notify"
	"vision-assist/internal/infrastructure/overlay"
	"vision-assist/internal/infrastructure/schedule"
	"vision-assist/internal/infrastructure/storage"
	"vision-assist/internal/infrastructure/vision"
	"vision-assist/internal/infrastructure/vlm"
	"vision-assist/internal/palette"
)

const analyzerJob = "danger-analyzer"

// Container собирает адаптеры и сервисы приложения
type Container struct {
	Sessions  *app.SessionService
	Frames    *app.FrameService
	Danger    *app.DangerService
	Server    *api.Server
	Scheduler *schedule.Scheduler

	closers []io.Closer
}

// New создаёт все зависимости по конфигурации.
// Недоступные модели и внешние сервисы отключаются с предупреждением.
func New(cfg *config.Config, logger *zap.SugaredLogger) (*Container, error) {
	c := &Container{}

	sessions := app.NewSessionService(storage.NewMemorySessionRepository())

	deps := app.FrameDeps{
		Localizer:   geometry.NewLocalizer(cfg.DepthFallback, cfg.MirrorX),
		Selector:    palette.NewSelector(cfg.ContrastTarget, cfg.FlipFrame),
		PersonClass: cfg.PersonClass,
		Logger:      logger.Named("frames"),
		NewTracker:  func() port.ObjectTracker { return vision.NewIoUTracker() },
	}

	if detector, err := vision.NewYOLODetector(cfg.DetectorModel); err != nil {
		logger.Warnw("object detector disabled", "model", cfg.DetectorModel, "error", err)
	} else {
		deps.Detector = detector
		c.closers = append(c.closers, detector)
	}
	if depth, err := vision.NewDepthModel(cfg.DepthModel); err != nil {
		logger.Warnw("depth estimator disabled, fallback depth is used", "model", cfg.DepthModel, "error", err)
	} else {
		deps.Depth = depth
		c.closers = append(c.closers, depth)
	}

	var archive *storage.FileArchive
	if cfg.ArchiveEnabled {
		a, err := storage.NewFileArchive(cfg.ArchiveDir)
		if err != nil {
			return nil, c.fail(err)
		}
		archive = a
		deps.Archive = archive
	}
	if cfg.DebugOverlay {
		debug, err := storage.NewFileArchive(filepath.Join(cfg.ArchiveDir, "debug"))
		if err != nil {
			return nil, c.fail(err)
		}
		renderer, err := overlay.NewRenderer()
		if err != nil {
			return nil, c.fail(err)
		}
		deps.Debug = debug
		deps.Renderer = renderer
	}

	frames := app.NewFrameService(deps)
	server := api.NewServer(sessions, frames, logger.Named("ws"))

	scheduler, err := schedule.New(logger.Named("scheduler"))
	if err != nil {
		return nil, c.fail(err)
	}
	c.closers = append(c.closers, closerFunc(scheduler.Shutdown))

	c.Sessions = sessions
	c.Frames = frames
	c.Server = server
	c.Scheduler = scheduler

	if !cfg.AnalyzerEnabled() {
		logger.Infow("danger analyzer disabled")
		return c, nil
	}

	classifier, err := vlm.NewAzureClient(vlm.Config{
		Endpoint:   cfg.AzureEndpoint,
		APIKey:     cfg.AzureAPIKey,
		Deployment: cfg.AzureDeployment,
		APIVersion: cfg.AzureAPIVersion,
	})
	if err != nil {
		return nil, c.fail(err)
	}

	var notifier port.DangerNotifier
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger.Named("telegram"))
		if err != nil {
			logger.Warnw("telegram alerts disabled", "error", err)
		} else {
			notifier = tg
		}
	}

	c.Danger = app.NewDangerService(sessions, archive, classifier, server, notifier, logger.Named("danger"))
	if err := scheduler.Every(analyzerJob, cfg.AnalyzerInterval, c.Danger.RunOnce); err != nil {
		return nil, c.fail(err)
	}
	return c, nil
}

// Close освобождает модели и останавливает планировщик
func (c *Container) Close() error {
	var err error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, c.closers[i].Close())
	}
	c.closers = nil
	return err
}

func (c *Container) fail(err error) error {
	return multierr.Append(err, c.Close())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
