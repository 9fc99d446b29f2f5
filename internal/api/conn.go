package api

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// conn одно websocket-соединение.
// Все записи идут под sendMu, чтобы ответ на кадр и рассылка анализа не смешивались.
type conn struct {
	id     string
	ws     *websocket.Conn
	sendMu sync.Mutex
	logger *zap.SugaredLogger

	writeTimeout time.Duration
}

func (c *conn) send(ctx context.Context, data []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, websocket.MessageText, data)
}
