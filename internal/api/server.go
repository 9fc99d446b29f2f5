package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	app "vision-assist/internal/application"
	"vision-assist/internal/domain/entity"
	"vision-assist/internal/domain/port"
)

const (
	defaultReadLimit    = 32 << 20
	defaultWriteTimeout = 10 * time.Second
)

// Server принимает websocket-соединения и обрабатывает кадры клиентов
type Server struct {
	sessions *app.SessionService
	frames   *app.FrameService
	logger   *zap.SugaredLogger

	ReadLimit    int64
	WriteTimeout time.Duration

	mu    sync.RWMutex
	conns map[string]*conn
}

// NewServer создаёт сервер
func NewServer(sessions *app.SessionService, frames *app.FrameService, logger *zap.SugaredLogger) *Server {
	return &Server{
		sessions:     sessions,
		frames:       frames,
		logger:       logger,
		ReadLimit:    defaultReadLimit,
		WriteTimeout: defaultWriteTimeout,
		conns:        make(map[string]*conn),
	}
}

// Handler маршруты: "/" для кадров, "/healthz" для проверки живости
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", s.serveWS)
	return mux
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Warnw("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	ws.SetReadLimit(s.ReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := s.sessions.Open(ctx, r.RemoteAddr)
	if err != nil {
		s.logger.Errorw("failed to open session", "error", err)
		ws.Close(websocket.StatusInternalError, "session")
		return
	}

	c := &conn{
		id:           session.ID,
		ws:           ws,
		logger:       s.logger.With("session", session.ID),
		writeTimeout: s.WriteTimeout,
	}
	s.register(c)
	c.logger.Infow("client connected", "remote", r.RemoteAddr)

	err = s.readLoop(ctx, c)
	s.unregister(c)

	closeCtx := context.WithoutCancel(ctx)
	framesProcessed := 0
	if closed, cerr := s.sessions.Close(closeCtx, c.id); cerr != nil {
		c.logger.Warnw("failed to close session", "error", cerr)
	} else {
		framesProcessed = closed.FramesProcessed
	}
	if ferr := s.frames.Forget(closeCtx, c.id); ferr != nil {
		c.logger.Warnw("failed to remove archived frames", "error", ferr)
	}

	switch status := websocket.CloseStatus(err); {
	case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
		c.logger.Infow("client disconnected", "frames", framesProcessed)
	case errors.Is(err, context.Canceled):
		c.logger.Infow("connection cancelled", "frames", framesProcessed)
		ws.Close(websocket.StatusGoingAway, "server shutting down")
	default:
		c.logger.Warnw("connection closed", "frames", framesProcessed, "error", err)
		ws.Close(websocket.StatusInternalError, "")
	}
}

// readLoop обрабатывает кадры соединения строго по очереди
func (s *Server) readLoop(ctx context.Context, c *conn) error {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			c.logger.Warnw("binary message dropped", "bytes", len(data))
			continue
		}

		req, cameraErr, err := ParseFrameRequest(data)
		if err != nil {
			c.logger.Warnw("message dropped", "error", err)
			continue
		}
		if cameraErr != nil {
			c.logger.Warnw("invalid camera, objects are not localized", "error", cameraErr)
		}

		if _, err := s.sessions.BeginFrame(ctx, c.id); err != nil {
			c.logger.Warnw("session update failed", "error", err)
		}
		res, err := s.frames.Process(ctx, c.id, req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warnw("frame dropped", "error", err)
			continue
		}
		if _, err := s.sessions.FrameDone(ctx, c.id); err != nil {
			c.logger.Warnw("session update failed", "error", err)
		}

		out, err := EncodeFrameResult(res)
		if err != nil {
			c.logger.Errorw("failed to encode result", "error", err)
			continue
		}
		if err := c.send(ctx, out); err != nil {
			return err
		}
	}
}

func (s *Server) register(c *conn) {
	s.mu.Lock()
	s.conns[c.id] = c
	s.mu.Unlock()
}

func (s *Server) unregister(c *conn) {
	s.mu.Lock()
	delete(s.conns, c.id)
	s.mu.Unlock()
}

// Broadcast отправляет анализ опасности всем открытым соединениям
func (s *Server) Broadcast(ctx context.Context, analysis entity.DangerAnalysis) error {
	data, err := EncodeDangerAnalysis(analysis)
	if err != nil {
		return err
	}

	s.mu.RLock()
	conns := make([]*conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()

	var errs error
	for _, c := range conns {
		if err := c.send(ctx, data); err != nil {
			c.logger.Warnw("danger broadcast failed", "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Connections число открытых соединений
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

// Проверка реализации интерфейса
var _ port.DangerBroadcaster = (*Server)(nil)
