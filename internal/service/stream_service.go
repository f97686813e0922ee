package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steph-crown/movie-moments/internal/models"
	repo "github.com/steph-crown/movie-moments/internal/repository/redis"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

type StreamState string

const (
	StreamDisconnected StreamState = "disconnected"
	StreamSubscribing  StreamState = "subscribing"
	StreamSubscribed   StreamState = "subscribed"
)

// StreamService is one room's live message log. While subscribed it holds an
// ordered, deduplicated, append-only copy of the room's messages with their
// reactions, kept current by the store's change events. Sends are never
// applied optimistically; the follow-up inserted event is the only thing
// that appends locally.
//
// Restarting the stream always performs a full historical reload. There is
// no incremental catch-up across a gap.
type StreamService struct {
	roomID string
	mRepo  repo.MessageRepository
	l      logger.Logger

	mu      sync.RWMutex
	state   StreamState
	loading bool
	loadErr error
	log     []models.Message
	sub     repo.Subscription
	// epoch invalidates in-flight fetches once the subscription that issued
	// them is torn down.
	epoch uint64

	changedCh chan struct{}
	wg        sync.WaitGroup
}

func NewStreamService(roomID string, mRepo repo.MessageRepository, l logger.Logger) *StreamService {
	return &StreamService{
		roomID:    roomID,
		mRepo:     mRepo,
		l:         l,
		state:     StreamDisconnected,
		changedCh: make(chan struct{}, 1),
	}
}

// Start subscribes to the room's change events and replaces the in-memory
// log with a full historical load. It is also the enabled gate: the
// surrounding application only calls Start once membership and privacy
// allow it.
func (s *StreamService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StreamDisconnected {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StreamSubscribing
	s.loading = true
	s.loadErr = nil
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	sub, err := s.mRepo.Subscribe(ctx, s.roomID)
	if err != nil {
		s.failStart(epoch, fmt.Errorf("failed to subscribe: %w", err))
		return err
	}

	// Subscribe before loading so nothing published during the load is
	// missed; duplicate application is harmless because inserts dedupe.
	msgs, err := s.mRepo.ListByRoom(ctx, s.roomID)
	if err != nil {
		sub.Close()
		s.failStart(epoch, fmt.Errorf("failed to load messages: %w", err))
		return err
	}

	s.mu.Lock()
	if s.epoch != epoch {
		// Torn down while loading; discard the stale result.
		s.mu.Unlock()
		sub.Close()
		return ErrNotStarted
	}
	s.log = msgs
	s.sub = sub
	s.state = StreamSubscribed
	s.loading = false
	s.mu.Unlock()

	s.wg.Add(1)
	go s.dispatch(ctx, sub, epoch)

	s.notifyChanged()

	s.l.Info(ctx, "Message stream subscribed",
		"room_id", s.roomID,
		"history_size", len(msgs),
	)

	return nil
}

// Stop tears the subscription down. In-flight fetches complete but their
// results are discarded.
func (s *StreamService) Stop() {
	s.mu.Lock()
	if s.state == StreamDisconnected {
		s.mu.Unlock()
		return
	}
	s.epoch++
	sub := s.sub
	s.sub = nil
	s.state = StreamDisconnected
	s.loading = false
	s.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
	s.wg.Wait()
}

func (s *StreamService) failStart(epoch uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.state = StreamDisconnected
	s.loading = false
	s.loadErr = err
}

func (s *StreamService) dispatch(ctx context.Context, sub repo.Subscription, epoch uint64) {
	defer s.wg.Done()

	for ev := range sub.Events() {
		s.applyEvent(ctx, ev, epoch)
	}

	// Transport closed underneath us; flag it so the application can
	// restart the stream, which reloads history from scratch.
	s.mu.Lock()
	if s.epoch == epoch {
		s.state = StreamDisconnected
	}
	s.mu.Unlock()
}

// applyEvent is the single dispatcher for the tagged change-event union.
// Events referencing rows unknown to the log are silent no-ops, not errors.
func (s *StreamService) applyEvent(ctx context.Context, ev models.ChangeEvent, epoch uint64) {
	switch ev.Kind {
	case models.ChangeMessageInserted:
		s.applyMessageInserted(ctx, ev, epoch)
	case models.ChangeMessageUpdated:
		s.applyMessageUpdated(ctx, ev, epoch)
	case models.ChangeMessageDeleted:
		s.applyMessageDeleted(ev, epoch)
	case models.ChangeReactionInserted:
		s.applyReactionInserted(ctx, ev, epoch)
	case models.ChangeReactionDeleted:
		s.applyReactionDeleted(ev, epoch)
	default:
		s.l.Warnf(ctx, "StreamService.applyEvent: unknown change kind %q", ev.Kind)
	}
}

func (s *StreamService) applyMessageInserted(ctx context.Context, ev models.ChangeEvent, epoch uint64) {
	if ev.RoomID != "" && ev.RoomID != s.roomID {
		return
	}

	s.mu.RLock()
	_, exists := s.indexOf(ev.MessageID)
	s.mu.RUnlock()
	if exists {
		// Duplicate delivery; the log already has it.
		return
	}

	msg, err := s.mRepo.Get(ctx, ev.MessageID)
	if err != nil {
		if err != repo.ErrNotFound {
			s.l.Errorf(ctx, "StreamService.applyMessageInserted: %v", err)
		}
		return
	}
	if msg.IsDeleted {
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if _, exists := s.indexOf(msg.ID); !exists {
		// Append at tail; an out-of-order insert event is a data-source
		// anomaly and is not reordered here.
		s.log = append(s.log, *msg)
	}
	s.mu.Unlock()

	s.notifyChanged()
}

func (s *StreamService) applyMessageUpdated(ctx context.Context, ev models.ChangeEvent, epoch uint64) {
	s.mu.RLock()
	_, exists := s.indexOf(ev.MessageID)
	s.mu.RUnlock()
	if !exists {
		return
	}

	msg, err := s.mRepo.Get(ctx, ev.MessageID)
	if err != nil {
		if err != repo.ErrNotFound {
			s.l.Errorf(ctx, "StreamService.applyMessageUpdated: %v", err)
		}
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if i, exists := s.indexOf(msg.ID); exists {
		// Replace mutable fields in place; position in the log is kept.
		s.log[i].Text = msg.Text
		s.log[i].EditedAt = msg.EditedAt
		s.log[i].Reactions = msg.Reactions
		s.log[i].IsDeleted = msg.IsDeleted
	}
	s.mu.Unlock()

	s.notifyChanged()
}

func (s *StreamService) applyMessageDeleted(ev models.ChangeEvent, epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if i, exists := s.indexOf(ev.MessageID); exists {
		s.log = append(s.log[:i], s.log[i+1:]...)
	}
	s.mu.Unlock()

	s.notifyChanged()
}

func (s *StreamService) applyReactionInserted(ctx context.Context, ev models.ChangeEvent, epoch uint64) {
	s.mu.RLock()
	_, exists := s.indexOf(ev.MessageID)
	s.mu.RUnlock()
	if !exists {
		// Reaction events arrive globally; one for a message outside this
		// room's log is simply not ours.
		return
	}

	reaction, err := s.mRepo.GetReaction(ctx, ev.ReactionID)
	if err != nil {
		if err != repo.ErrNotFound {
			s.l.Errorf(ctx, "StreamService.applyReactionInserted: %v", err)
		}
		return
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if i, exists := s.indexOf(reaction.MessageID); exists {
		if !hasReaction(s.log[i].Reactions, reaction.ID) {
			s.log[i].Reactions = append(s.log[i].Reactions, *reaction)
		}
	}
	s.mu.Unlock()

	s.notifyChanged()
}

func (s *StreamService) applyReactionDeleted(ev models.ChangeEvent, epoch uint64) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	// Remove by reaction id from whichever message currently holds it.
	for i := range s.log {
		reactions := s.log[i].Reactions
		for j := range reactions {
			if reactions[j].ID == ev.ReactionID {
				s.log[i].Reactions = append(reactions[:j], reactions[j+1:]...)
				s.mu.Unlock()
				s.notifyChanged()
				return
			}
		}
	}
	s.mu.Unlock()
}

// SendMessage writes a new message row. The local log is only updated by the
// resulting inserted event; there is no optimistic append and no retry.
func (s *StreamService) SendMessage(ctx context.Context, in SendMessageInput) (*models.Message, error) {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyMessage
	}

	depth := 0
	if in.ParentMessageID != nil {
		depth = 1
	}

	msg := &models.Message{
		ID:              uuid.New().String(),
		RoomID:          s.roomID,
		UserID:          id.UserID,
		AuthorName:      id.DisplayName,
		Text:            in.Text,
		Position:        in.Position,
		ThreadDepth:     depth,
		ParentMessageID: in.ParentMessageID,
		CreatedAt:       time.Now(),
	}

	if err := s.mRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return msg, nil
}

// AddReaction stores this user's reaction, replacing any reaction they
// already hold on the message.
func (s *StreamService) AddReaction(ctx context.Context, messageID, emoji string) (*models.Reaction, error) {
	id, err := IdentityFrom(ctx)
	if err != nil {
		return nil, err
	}

	reaction := &models.Reaction{
		ID:        uuid.New().String(),
		MessageID: messageID,
		UserID:    id.UserID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}

	if err := s.mRepo.AddReaction(ctx, reaction); err != nil {
		return nil, fmt.Errorf("failed to add reaction: %w", err)
	}

	return reaction, nil
}

func (s *StreamService) RemoveReaction(ctx context.Context, reactionID string) error {
	if _, err := IdentityFrom(ctx); err != nil {
		return err
	}

	if err := s.mRepo.RemoveReaction(ctx, reactionID); err != nil {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}

	return nil
}

// Snapshot returns a copy of the current log in created-at order.
func (s *StreamService) Snapshot() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.log))
	copy(out, s.log)
	return out
}

func (s *StreamService) State() StreamState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *StreamService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *StreamService) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Changed coalesces change notifications for the delivery layer.
func (s *StreamService) Changed() <-chan struct{} {
	return s.changedCh
}

func (s *StreamService) notifyChanged() {
	select {
	case s.changedCh <- struct{}{}:
	default:
	}
}

// indexOf requires s.mu held.
func (s *StreamService) indexOf(msgID string) (int, bool) {
	for i := range s.log {
		if s.log[i].ID == msgID {
			return i, true
		}
	}
	return 0, false
}

func hasReaction(reactions []models.Reaction, id string) bool {
	for i := range reactions {
		if reactions[i].ID == id {
			return true
		}
	}
	return false
}
