package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/mvu/pkg/protocol"
	"github.com/vango-dev/mvu/pkg/runtime"
)

// session is one websocket connection driving one instance.
type session struct {
	id      string
	conn    *websocket.Conn
	doc     *socketDocument
	inst    runtime.Instance
	config  *Config
	metrics *metrics
	logger  *slog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// run mounts the instance and serves client frames until the connection
// closes or a fatal error occurs.
func (s *session) run(ctx context.Context) {
	defer s.close(websocket.CloseNormalClosure, "")

	if err := s.inst.Mount(ctx); err != nil {
		s.logger.Error("mount failed", "error", err)
		s.fail(0, protocol.ErrServerError, "mount failed")
		return
	}

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})
	go s.heartbeat()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.metrics.wsError("read")
			}
			return
		}

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.notify(protocol.NewError(0, protocol.ErrInvalidFrame, err.Error()))
			continue
		}
		s.metrics.frameReceived(frame.Type, len(msg))

		switch frame.Type {
		case protocol.FrameEvent:
			if !s.handleEvent(ctx, frame.Payload) {
				return
			}
		case protocol.FrameResync:
			if !s.resync(ctx) {
				return
			}
		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
			s.notify(protocol.NewError(0, protocol.ErrInvalidFrame, "unexpected frame type "+frame.Type.String()))
		}
	}
}

// heartbeat pings the client until the session closes.
func (s *session) heartbeat() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.doc.ping(); err != nil {
				s.logger.Debug("ping failed", "error", err)
				return
			}
		case <-s.done:
			return
		}
	}
}

// handleEvent dispatches one event and reports whether the session goes on.
func (s *session) handleEvent(ctx context.Context, payload []byte) bool {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Warn("event decode error", "error", err)
		s.notify(protocol.NewError(0, protocol.ErrInvalidEvent, "invalid event format"))
		return true
	}

	err = s.inst.Dispatch(ctx, ev.ID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, runtime.ErrUnknownCommand):
		s.notify(protocol.NewError(ev.Seq, protocol.ErrUnknownCommand, err.Error()))
		return true
	case errors.Is(err, runtime.ErrCycleInFlight):
		s.notify(protocol.NewError(ev.Seq, protocol.ErrBusy, err.Error()))
		return true
	case errors.Is(err, runtime.ErrExternalPrimitive):
		s.logger.Warn("primitive failed, resyncing", "seq", ev.Seq, "error", err)
		s.notify(protocol.NewError(ev.Seq, protocol.ErrDesynced, "document out of step, resyncing"))
		return s.resync(ctx)
	default:
		s.logger.Error("cycle failed", "seq", ev.Seq, "error", err)
		s.fail(ev.Seq, protocol.ErrCycleFailed, err.Error())
		return false
	}
}

func (s *session) resync(ctx context.Context) bool {
	if err := s.inst.Resync(ctx); err != nil {
		s.logger.Error("resync failed", "error", err)
		s.fail(0, protocol.ErrDesynced, "resync failed")
		return false
	}
	return true
}

// notify sends a non-fatal error frame.
func (s *session) notify(em *protocol.ErrorMessage) {
	if err := s.doc.sendError(em); err != nil {
		s.logger.Debug("error frame not sent", "error", err)
	}
}

// fail sends a fatal error frame. The caller ends the session.
func (s *session) fail(seq uint64, code protocol.ErrorCode, message string) {
	s.notify(protocol.NewFatalError(seq, code, message))
}

func (s *session) close(code int, reason string) {
	s.closeOnce.Do(func() {
		close(s.done)
		s.doc.close(code, reason)
		s.inst.Close()
		s.logger.Info("session closed")
	})
}
