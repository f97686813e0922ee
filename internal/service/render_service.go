package service

import (
	"sync"
	"time"

	"github.com/steph-crown/movie-moments/internal/models"
	"github.com/steph-crown/movie-moments/internal/progress"
)

// RenderService turns a message log into per-message render decisions for
// one viewer: consecutive-author grouping, spoiler blur, and reply-parent
// previews. It is session-scoped; revealed spoilers stay revealed until the
// session ends.
type RenderService struct {
	groupGap time.Duration

	mu       sync.Mutex
	revealed map[string]struct{}
}

func NewRenderService(groupGap time.Duration) *RenderService {
	return &RenderService{
		groupGap: groupGap,
		revealed: make(map[string]struct{}),
	}
}

// Decide renders the log for a viewer. spoilerPolicy is the room's setting;
// when off, nothing is ever blurred.
func (s *RenderService) Decide(
	msgs []models.Message,
	viewerID string,
	viewerPos models.Position,
	ct models.ContentType,
	spoilerPolicy bool,
) []RenderedMessage {
	byID := make(map[string]int, len(msgs))
	for i := range msgs {
		byID[msgs[i].ID] = i
	}

	out := make([]RenderedMessage, 0, len(msgs))
	for i := range msgs {
		msg := msgs[i]

		rm := RenderedMessage{
			Message:    msg,
			GroupStart: s.isGroupStart(msgs, i),
		}

		if msg.ParentMessageID != nil {
			// Resolve against the in-memory log only; an unknown parent
			// degrades to no preview.
			if j, ok := byID[*msg.ParentMessageID]; ok {
				parent := msgs[j]
				rm.Parent = &parent
			}
		}

		if spoilerPolicy {
			rm.Blurred = s.shouldBlur(msg, rm.Parent, viewerID, viewerPos, ct)
		}

		out = append(out, rm)
	}

	return out
}

// Reveal marks a message as explicitly un-blurred for the rest of the
// session.
func (s *RenderService) Reveal(messageID string) {
	s.mu.Lock()
	s.revealed[messageID] = struct{}{}
	s.mu.Unlock()
}

func (s *RenderService) isRevealed(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revealed[messageID]
	return ok
}

// shouldBlur checks the message's attributed position against the viewer.
// Replies inherit spoiler risk from their parent's position rather than
// their own possibly-absent one.
func (s *RenderService) shouldBlur(
	msg models.Message,
	parent *models.Message,
	viewerID string,
	viewerPos models.Position,
	ct models.ContentType,
) bool {
	if msg.UserID == viewerID {
		return false
	}
	if s.isRevealed(msg.ID) {
		return false
	}

	pos := msg.Position
	if msg.ThreadDepth > 0 {
		pos = nil
		if parent != nil {
			pos = parent.Position
		}
	}
	if pos == nil {
		return false
	}

	return progress.IsSpoiler(*pos, viewerPos, ct)
}

// isGroupStart reports whether msgs[i] opens a new visual cluster. A cluster
// continues only while author, thread depth and parent match and the gap
// stays under the configured limit.
func (s *RenderService) isGroupStart(msgs []models.Message, i int) bool {
	if i == 0 {
		return true
	}

	prev, cur := msgs[i-1], msgs[i]

	if prev.UserID != cur.UserID {
		return true
	}
	if cur.CreatedAt.Sub(prev.CreatedAt) >= s.groupGap {
		return true
	}
	if prev.ThreadDepth != cur.ThreadDepth {
		return true
	}
	if !equalParent(prev.ParentMessageID, cur.ParentMessageID) {
		return true
	}

	return false
}

func equalParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
