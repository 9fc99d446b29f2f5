// Package notify отправляет оповещения об опасности во внешние каналы.
package notify

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

const msgDanger = `⚠️ Обнаружена опасность

Уровень: %s
Источник: %s`

// TelegramNotifier шлёт оповещения в чат Telegram
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.SugaredLogger
}

// NewTelegramNotifier авторизуется в Bot API
func NewTelegramNotifier(token string, chatID int64, logger *zap.SugaredLogger) (*TelegramNotifier, error) {
	return NewTelegramNotifierWithEndpoint(token, tgbotapi.APIEndpoint, chatID, http.DefaultClient, logger)
}

// NewTelegramNotifierWithEndpoint позволяет указать адрес Bot API и HTTP-клиент
func NewTelegramNotifierWithEndpoint(
	token, endpoint string,
	chatID int64,
	client tgbotapi.HTTPClient,
	logger *zap.SugaredLogger,
) (*TelegramNotifier, error) {
	if chatID == 0 {
		return nil, errors.New("telegram chat id is required")
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, errors.Wrap(err, "telegram auth")
	}
	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &TelegramNotifier{api: api, chatID: chatID, logger: logger}, nil
}

// Notify отправляет тревожный анализ; спокойные пропускаются
func (n *TelegramNotifier) Notify(ctx context.Context, analysis entity.DangerAnalysis) error {
	if !analysis.Alarming() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf(msgDanger, analysis.Level, analysis.Source))
	if _, err := n.api.Send(msg); err != nil {
		return errors.Wrap(err, "telegram send")
	}
	n.logger.Debugw("danger alert sent", "chat", n.chatID, "level", analysis.Level)
	return nil
}

// Проверка реализации интерфейса
var _ port.DangerNotifier = (*TelegramNotifier)(nil)
