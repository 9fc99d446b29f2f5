package app

import (
	"bytes"
	"context"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
	"vision-assist/internal/geometry"
	"vision-assist/internal/palette"
)

// DefaultPersonClass класс детекций, которые локализуются
const DefaultPersonClass = "person"

// FrameDeps зависимости сервиса кадров.
// Detector, Depth, Archive, Debug, Renderer и NewTracker могут быть nil.
// NewTracker вызывается один раз на сессию.
type FrameDeps struct {
	Detector    port.ObjectDetector
	Depth       port.DepthEstimator
	Localizer   *geometry.Localizer
	Selector    *palette.Selector
	Archive     port.FrameArchive
	Debug       port.FrameArchive
	Renderer    port.OverlayRenderer
	NewTracker  func() port.ObjectTracker
	PersonClass string
	Logger      *zap.SugaredLogger
}

// FrameService обрабатывает кадры: детекция, глубина, цвета панели, локализация.
type FrameService struct {
	detector    port.ObjectDetector
	depth       port.DepthEstimator
	localizer   *geometry.Localizer
	selector    *palette.Selector
	archive     port.FrameArchive
	debug       port.FrameArchive
	renderer    port.OverlayRenderer
	newTracker  func() port.ObjectTracker
	personClass string
	logger      *zap.SugaredLogger

	mu       sync.Mutex
	trackers map[string]port.ObjectTracker
}

// NewFrameService создаёт сервис; пустые параметры заменяются значениями по умолчанию
func NewFrameService(deps FrameDeps) *FrameService {
	s := &FrameService{
		detector:    deps.Detector,
		depth:       deps.Depth,
		localizer:   deps.Localizer,
		selector:    deps.Selector,
		archive:     deps.Archive,
		debug:       deps.Debug,
		renderer:    deps.Renderer,
		newTracker:  deps.NewTracker,
		personClass: deps.PersonClass,
		logger:      deps.Logger,
		trackers:    make(map[string]port.ObjectTracker),
	}
	if s.localizer == nil {
		s.localizer = geometry.NewLocalizer(geometry.DefaultFallbackDepth, false)
	}
	if s.selector == nil {
		s.selector = palette.NewSelector(palette.DefaultTargetContrast, true)
	}
	if s.personClass == "" {
		s.personClass = DefaultPersonClass
	}
	if s.logger == nil {
		s.logger = zap.NewNop().Sugar()
	}
	return s
}

// ArchiveName имя последнего кадра сессии в архиве
func ArchiveName(sessionID string) string {
	return "frame_" + sessionID + ".jpg"
}

// DebugName имя отладочного изображения сессии
func DebugName(sessionID string) string {
	return "debug_" + sessionID + ".png"
}

// Process обрабатывает один кадр.
// Ошибка возвращается только для нечитаемого изображения или отменённого контекста;
// сбои детектора и глубины логируются, ответ всё равно формируется.
func (s *FrameService) Process(ctx context.Context, sessionID string, req entity.FrameRequest) (*entity.FrameResult, error) {
	frame, err := imaging.Decode(bytes.NewReader(req.ImageData))
	if err != nil {
		return nil, errors.Wrap(err, "decode frame")
	}
	size := frame.Bounds().Size()
	if size.X == 0 || size.Y == 0 {
		return nil, errors.New("empty frame")
	}
	log := s.logger.With("session", sessionID)

	var (
		detections []entity.Detection
		depth      *entity.DepthField
		selection  palette.Selection
		g          errgroup.Group
	)
	if s.detector != nil {
		g.Go(func() error {
			dets, err := s.detector.Detect(ctx, frame)
			if err != nil {
				log.Warnw("detector failed", "error", err)
				return nil
			}
			detections = dets
			return nil
		})
	}
	if s.depth != nil {
		g.Go(func() error {
			field, err := s.depth.Estimate(ctx, frame)
			if err != nil {
				log.Warnw("depth estimation failed, using fallback depth", "error", err)
				return nil
			}
			if field != nil && (field.Width != size.X || field.Height != size.Y) {
				log.Warnw("depth field does not match frame, using fallback depth",
					"depth", image.Pt(field.Width, field.Height), "frame", size)
				return nil
			}
			depth = field
			return nil
		})
	}
	g.Go(func() error {
		selection = s.selector.Select(frame, req.Quad, req.FlipColors)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tracker := s.tracker(sessionID); tracker != nil && len(detections) > 0 {
		tracker.Update(detections)
	}

	var overlay *entity.Overlay
	if s.renderer != nil && s.debug != nil {
		overlay = &entity.Overlay{Interior: selection.Interior, Exterior: selection.Exterior}
	}

	result := &entity.FrameResult{Colors: selection.Pair, Overlay: overlay}
	for _, det := range detections {
		if det.Class != s.personClass {
			continue
		}
		loc, err := s.localizer.Localize(det, depth, req.Camera, size, overlay)
		if err != nil {
			log.Debugw("detection skipped", "id", det.ID(), "error", err)
			continue
		}
		if loc == nil {
			continue
		}
		result.Objects = append(result.Objects, entity.TrackedObject{ID: det.ID(), ObjectLocalization: *loc})
	}

	log.Debugw("frame processed",
		"hasObjects", result.HasObjects(),
		"objects", len(result.Objects),
		"stage", selection.Stage.String(),
		"contrast", selection.Contrast)

	s.store(ctx, log, sessionID, frame, overlay)
	return result, nil
}

// tracker возвращает трекер сессии, создавая его при первом кадре
func (s *FrameService) tracker(sessionID string) port.ObjectTracker {
	if s.newTracker == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tr, ok := s.trackers[sessionID]
	if !ok {
		tr = s.newTracker()
		s.trackers[sessionID] = tr
	}
	return tr
}

// store сохраняет кадр для анализатора и отладочную разметку; ошибки только логируются
func (s *FrameService) store(ctx context.Context, log *zap.SugaredLogger, sessionID string, frame image.Image, overlay *entity.Overlay) {
	if s.archive != nil {
		if err := s.archive.Save(ctx, ArchiveName(sessionID), frame); err != nil {
			log.Warnw("failed to archive frame", "error", err)
		}
	}
	if overlay != nil {
		if err := s.debug.Save(ctx, DebugName(sessionID), s.renderer.Render(frame, overlay)); err != nil {
			log.Warnw("failed to save debug overlay", "error", err)
		}
	}
}

// Forget удаляет трекер и сохранённые кадры закрытой сессии
func (s *FrameService) Forget(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.trackers, sessionID)
	s.mu.Unlock()

	var err error
	if s.archive != nil {
		err = multierr.Append(err, s.archive.Remove(ctx, ArchiveName(sessionID)))
	}
	if s.debug != nil {
		err = multierr.Append(err, s.debug.Remove(ctx, DebugName(sessionID)))
	}
	return err
}
