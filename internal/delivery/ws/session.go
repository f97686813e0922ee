package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/internal/service"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	statsPeriod    = 5 * time.Second
	maxMessageSize = 4096
)

// session is one authenticated websocket connection to one room. It owns the
// per-viewer service objects for its lifetime; closing the socket stops them.
type session struct {
	conn     *websocket.Conn
	identity service.Identity
	room     *models.Room

	stream   *service.StreamService
	position *service.PositionService
	render   *service.RenderService
	rmSvc    service.RoomService

	l    logger.Logger
	send chan any
	done chan struct{}
}

func newSession(
	conn *websocket.Conn,
	identity service.Identity,
	room *models.Room,
	stream *service.StreamService,
	position *service.PositionService,
	render *service.RenderService,
	rmSvc service.RoomService,
	l logger.Logger,
) *session {
	return &session{
		conn:     conn,
		identity: identity,
		room:     room,
		stream:   stream,
		position: position,
		render:   render,
		rmSvc:    rmSvc,
		l:        l,
		send:     make(chan any, 16),
		done:     make(chan struct{}),
	}
}

func (s *session) run(ctx context.Context) {
	ctx = service.WithIdentity(ctx, s.identity)

	go s.writePump(ctx)
	s.readPump(ctx)
}

// enqueue hands a frame to the write pump. A slow consumer that fills the
// buffer loses frames rather than blocking the event path; the next snapshot
// carries the full state anyway.
func (s *session) enqueue(frame any) {
	select {
	case s.send <- frame:
	case <-s.done:
	default:
	}
}

func (s *session) pushSnapshot() {
	msgs := s.stream.Snapshot()
	rendered := s.render.Decide(
		msgs,
		s.identity.UserID,
		s.position.Position(),
		s.room.ContentType,
		s.room.SpoilerPolicy,
	)
	s.enqueue(newSnapshotFrame(s.stream.State(), rendered))
}

func (s *session) pushStats() {
	s.enqueue(newStatsFrame(s.position.Position(), s.position.Stats()))
}

func (s *session) readPump(ctx context.Context) {
	defer func() {
		close(s.done)
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.l.Warnf(ctx, "ws.session.readPump: %v", err)
			}
			return
		}

		var frame clientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.enqueue(newErrorFrame("invalid frame"))
			continue
		}

		if err := s.handleFrame(ctx, frame); err != nil {
			s.enqueue(newErrorFrame(err.Error()))
		}
	}
}

func (s *session) handleFrame(ctx context.Context, frame clientFrame) error {
	switch frame.Type {
	case frameSendMessage:
		_, err := s.stream.SendMessage(ctx, service.SendMessageInput{
			Text:            frame.Text,
			Position:        frame.Position,
			ParentMessageID: frame.ParentMessageID,
		})
		return err

	case frameAddReaction:
		_, err := s.stream.AddReaction(ctx, frame.MessageID, frame.Emoji)
		return err

	case frameRemoveReaction:
		return s.stream.RemoveReaction(ctx, frame.ReactionID)

	case frameUpdatePosition:
		if frame.Position == nil {
			return service.ErrInvalidPosition
		}
		if err := s.position.Update(ctx, *frame.Position); err != nil {
			return err
		}
		// The viewer moved; spoiler decisions may flip.
		s.pushSnapshot()
		s.pushStats()
		return nil

	case frameDismissStaleness:
		s.position.DismissStaleness()
		return nil

	case frameReveal:
		s.render.Reveal(frame.MessageID)
		s.pushSnapshot()
		return nil

	case frameHeartbeat:
		return s.rmSvc.Heartbeat(ctx, s.room.ID)

	default:
		s.l.Warnf(ctx, "ws.session.handleFrame: unknown frame type %q", frame.Type)
		return nil
	}
}

func (s *session) writePump(ctx context.Context) {
	pingTicker := time.NewTicker(pingPeriod)
	statsTicker := time.NewTicker(statsPeriod)
	defer func() {
		pingTicker.Stop()
		statsTicker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.send:
			if err := s.writeJSON(frame); err != nil {
				s.l.Warnf(ctx, "ws.session.writePump: %v", err)
				return
			}

		case <-s.stream.Changed():
			s.pushSnapshot()

		case <-s.position.Staleness():
			s.enqueue(newStalenessFrame())

		case <-statsTicker.C:
			if err := s.position.RefreshParticipants(ctx); err != nil {
				s.l.Warnf(ctx, "ws.session.writePump: %v", err)
			}
			s.pushStats()

		case <-pingTicker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			return

		case <-ctx.Done():
			return
		}
	}
}

func (s *session) writeJSON(frame any) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(frame)
}
