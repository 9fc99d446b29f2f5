package app

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// DangerService периодически отправляет архив кадров классификатору опасности
type DangerService struct {
	sessions    *SessionService
	archive     port.FrameArchive
	classifier  port.DangerClassifier
	broadcaster port.DangerBroadcaster
	notifier    port.DangerNotifier
	logger      *zap.SugaredLogger
}

// NewDangerService создаёт анализатор; notifier может быть nil
func NewDangerService(
	sessions *SessionService,
	archive port.FrameArchive,
	classifier port.DangerClassifier,
	broadcaster port.DangerBroadcaster,
	notifier port.DangerNotifier,
	logger *zap.SugaredLogger,
) *DangerService {
	return &DangerService{
		sessions:    sessions,
		archive:     archive,
		classifier:  classifier,
		broadcaster: broadcaster,
		notifier:    notifier,
		logger:      logger,
	}
}

// RunOnce выполняет один цикл анализа.
// Без открытых соединений и без кадров вызов модели пропускается.
func (s *DangerService) RunOnce(ctx context.Context) error {
	active, err := s.sessions.HasActive(ctx)
	if err != nil {
		return err
	}
	if !active {
		return nil
	}

	frames, err := s.archive.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "load archive")
	}
	if len(frames) == 0 {
		return nil
	}

	reply, err := s.classifier.Classify(ctx, frames)
	if err != nil {
		return errors.Wrap(err, "classify frames")
	}

	analysis, err := ParseDangerReply(reply)
	if err != nil {
		return err
	}
	s.logger.Infow("danger analysis", "level", analysis.Level, "source", analysis.Source, "frames", len(frames))

	if err := s.broadcaster.Broadcast(ctx, analysis); err != nil {
		s.logger.Warnw("danger broadcast failed", "error", err)
	}
	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, analysis); err != nil {
			return errors.Wrap(err, "notify danger")
		}
	}
	return nil
}

// ParseDangerReply разбирает JSON-ответ модели, допускает обёртку ```json
func ParseDangerReply(reply string) (entity.DangerAnalysis, error) {
	text := strings.TrimSpace(reply)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var raw struct {
		Level     string `json:"danger_level"`
		Source    string `json:"danger_source"`
		AltLevel  string `json:"DangerLevel"`
		AltSource string `json:"DangerSource"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return entity.DangerAnalysis{}, errors.Wrapf(err, "parse danger reply %q", reply)
	}

	analysis := entity.DangerAnalysis{Level: raw.Level, Source: raw.Source}
	if analysis.Level == "" {
		analysis.Level = raw.AltLevel
	}
	if analysis.Source == "" {
		analysis.Source = raw.AltSource
	}
	analysis.Level = strings.ToUpper(strings.TrimSpace(analysis.Level))
	if analysis.Level == "" {
		return entity.DangerAnalysis{}, errors.Errorf("danger reply without level: %q", reply)
	}
	return analysis, nil
}
