package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/steph-crown/movie-moments/config"
	kafka "github.com/steph-crown/movie-moments/internal/delivery/kafka"
	"github.com/steph-crown/movie-moments/internal/delivery/kafka/producer"
	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/internal/progress"
	repo "github.com/steph-crown/movie-moments/internal/repository/redis"
	"github.com/steph-crown/movie-moments/pkg/logger"
)

// PositionService owns one user's viewing position within one room: the
// authoritative read/write path, the participant list it is compared
// against, and the staleness nudge. Construct one per (room, user) and drive
// it with Start/Stop; nothing here is shared across rooms.
type PositionService struct {
	roomID      string
	userID      string
	contentType models.ContentType

	pRepo repo.ParticipantRepository
	prod  producer.Producer
	cfg   config.RoomConfig
	l     logger.Logger

	// clock is swapped in tests.
	clock func() time.Time

	mu                sync.RWMutex
	started           bool
	position          models.Position
	positionUpdatedAt time.Time
	participants      []models.Participant
	stalenessActive   bool

	staleCh chan struct{}
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewPositionService(
	roomID, userID string,
	contentType models.ContentType,
	pRepo repo.ParticipantRepository,
	prod producer.Producer,
	cfg config.RoomConfig,
	l logger.Logger,
) *PositionService {
	return &PositionService{
		roomID:      roomID,
		userID:      userID,
		contentType: contentType,
		pRepo:       pRepo,
		prod:        prod,
		cfg:         cfg,
		l:           l,
		clock:       time.Now,
		staleCh:     make(chan struct{}, 1),
	}
}

// Start performs the initial authoritative refresh and begins the staleness
// ticker. It fails if the participant row cannot be read at all.
func (s *PositionService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.Refresh(ctx); err != nil {
		s.mu.Lock()
		s.started = false
		s.mu.Unlock()
		return fmt.Errorf("failed to load initial position: %w", err)
	}

	if err := s.RefreshParticipants(ctx); err != nil {
		s.l.Warnf(ctx, "PositionService.Start: initial participant load failed: %v", err)
	}

	s.wg.Add(1)
	go s.stalenessLoop(ctx)

	return nil
}

func (s *PositionService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

// Refresh pulls the authoritative position. Failure keeps the previously
// known position; there is no silent reset to defaults.
func (s *PositionService) Refresh(ctx context.Context) error {
	p, err := s.pRepo.Get(ctx, s.roomID, s.userID)
	if err != nil {
		if err == repo.ErrNotFound {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to refresh position: %w", err)
	}

	s.mu.Lock()
	s.position = p.Position
	s.positionUpdatedAt = s.clock()
	s.mu.Unlock()

	return nil
}

// Update writes the position through to the store and then refreshes from it
// rather than trusting the optimistic write. On failure the stored position
// is untouched and the caller must not assume the write applied.
func (s *PositionService) Update(ctx context.Context, pos models.Position) error {
	if pos.TimestampSeconds < 0 {
		pos.TimestampSeconds = 0
	}

	if err := s.pRepo.UpdatePosition(ctx, s.roomID, s.userID, pos); err != nil {
		if err == repo.ErrNotFound {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to update position: %w", err)
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}

	// A completed update counts as activity; clear any pending nudge.
	s.mu.Lock()
	s.stalenessActive = false
	s.positionUpdatedAt = s.clock()
	s.mu.Unlock()

	if s.prod != nil {
		if err := s.prod.PublishPositionUpdated(ctx, kafka.PositionUpdatedEvent{
			RoomID:    s.roomID,
			UserID:    s.userID,
			Position:  pos,
			UpdatedAt: s.clock(),
		}); err != nil {
			s.l.Errorf(ctx, "PositionService.Update: failed to publish position updated event: %v", err)
		}
	}

	return nil
}

func (s *PositionService) RefreshParticipants(ctx context.Context) error {
	participants, err := s.pRepo.ListByRoom(ctx, s.roomID)
	if err != nil {
		return fmt.Errorf("failed to refresh participants: %w", err)
	}

	joined := make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsJoined() {
			joined = append(joined, p)
		}
	}

	s.mu.Lock()
	s.participants = joined
	s.mu.Unlock()

	return nil
}

func (s *PositionService) Position() models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position
}

func (s *PositionService) Participants() []models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Participant, len(s.participants))
	copy(out, s.participants)
	return out
}

// Stats classifies the other participants against the current position.
func (s *PositionService) Stats() models.PositionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return progress.ComputeStats(s.userID, s.position, s.participants, s.contentType)
}

// Staleness delivers one signal each time the position goes stale. The
// signal is a soft nudge; it never blocks reads or writes.
func (s *PositionService) Staleness() <-chan struct{} {
	return s.staleCh
}

// DismissStaleness acknowledges the nudge ("still here") and restarts the
// staleness window.
func (s *PositionService) DismissStaleness() {
	s.mu.Lock()
	s.stalenessActive = false
	s.positionUpdatedAt = s.clock()
	s.mu.Unlock()
}

func (s *PositionService) stalenessLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.StalenessCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.checkStaleness()
		}
	}
}

// checkStaleness raises the signal at most once per stale window; while a
// nudge is pending, further ticks are no-ops.
func (s *PositionService) checkStaleness() {
	s.mu.Lock()
	if s.stalenessActive || s.clock().Sub(s.positionUpdatedAt) <= s.cfg.StalenessThreshold {
		s.mu.Unlock()
		return
	}
	s.stalenessActive = true
	s.mu.Unlock()

	select {
	case s.staleCh <- struct{}{}:
	default:
	}
}
