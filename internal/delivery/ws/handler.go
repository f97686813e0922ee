package ws

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/steph-crown/movie-moments/config"
	"github.com/steph-crown/movie-moments/internal/delivery/kafka/producer"
	repo "github.com/steph-crown/movie-moments/internal/repository/redis"
	"github.com/steph-crown/movie-moments/internal/service"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is fixed.
		return true
	},
}

// Handler upgrades authenticated clients into room sessions. Each accepted
// connection gets its own stream, position and render services scoped to the
// requested room.
type Handler struct {
	idSvc service.IdentityService
	rmSvc service.RoomService
	mRepo repo.MessageRepository
	pRepo repo.ParticipantRepository
	prod  producer.Producer
	cfg   config.RoomConfig
	l     logger.Logger
}

func NewHandler(
	idSvc service.IdentityService,
	rmSvc service.RoomService,
	mRepo repo.MessageRepository,
	pRepo repo.ParticipantRepository,
	prod producer.Producer,
	cfg config.RoomConfig,
	l logger.Logger,
) *Handler {
	return &Handler{
		idSvc: idSvc,
		rmSvc: rmSvc,
		mRepo: mRepo,
		pRepo: pRepo,
		prod:  prod,
		cfg:   cfg,
		l:     l,
	}
}

// ServeRoom handles GET /ws/rooms/{roomId}. The token comes from the
// Authorization header or, for browser websocket clients that cannot set
// headers, the token query parameter.
func (h *Handler) ServeRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.authenticate(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	ctx = service.WithIdentity(ctx, identity)

	roomID := r.PathValue("roomId")
	if roomID == "" {
		http.Error(w, "Room ID is required", http.StatusBadRequest)
		return
	}

	room, err := h.rmSvc.GetRoom(ctx, roomID)
	if err != nil {
		if err == service.ErrRoomNotFound {
			http.Error(w, "Room not found", http.StatusNotFound)
			return
		}
		h.l.Errorf(ctx, "ws.Handler.ServeRoom: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Subscribing requires joined membership regardless of room privacy;
	// public rooms are discoverable, not readable, before joining.
	p, err := h.pRepo.Get(ctx, roomID, identity.UserID)
	if err != nil || !p.IsJoined() {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Warnf(ctx, "ws.Handler.ServeRoom: upgrade failed: %v", err)
		return
	}

	stream := service.NewStreamService(roomID, h.mRepo, h.l)
	position := service.NewPositionService(roomID, identity.UserID, room.ContentType, h.pRepo, h.prod, h.cfg, h.l)
	render := service.NewRenderService(h.cfg.MessageGroupGap)

	if err := position.Start(ctx); err != nil {
		h.l.Errorf(ctx, "ws.Handler.ServeRoom: %v", err)
		conn.WriteJSON(newErrorFrame("failed to load position"))
		conn.Close()
		return
	}

	if err := stream.Start(ctx); err != nil {
		h.l.Errorf(ctx, "ws.Handler.ServeRoom: %v", err)
		conn.WriteJSON(newErrorFrame("failed to subscribe"))
		position.Stop()
		conn.Close()
		return
	}

	h.l.Info(ctx, "Websocket session opened",
		"room_id", roomID,
		"user_id", identity.UserID,
	)

	sess := newSession(conn, identity, room, stream, position, render, h.rmSvc, h.l)
	sess.pushSnapshot()
	sess.pushStats()
	sess.run(ctx)

	stream.Stop()
	position.Stop()

	h.l.Info(ctx, "Websocket session closed",
		"room_id", roomID,
		"user_id", identity.UserID,
	)
}

func (h *Handler) authenticate(r *http.Request) (service.Identity, error) {
	token := r.URL.Query().Get("token")
	if auth := r.Header.Get("Authorization"); auth != "" {
		token = strings.TrimPrefix(auth, "Bearer ")
	}
	if token == "" {
		return service.Identity{}, service.ErrNotAuthenticated
	}

	return h.idSvc.Authenticate(token)
}
