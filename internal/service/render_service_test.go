package service

import (
	"testing"
	"time"

	"github.com/steph-crown/movie-moments/internal/models"
)

func renderMsg(id, userID string, at time.Time, seconds int) models.Message {
	return models.Message{
		ID:        id,
		RoomID:    "room-1",
		UserID:    userID,
		Text:      "msg " + id,
		Position:  &models.Position{TimestampSeconds: seconds},
		CreatedAt: at,
	}
}

func TestRenderServiceGrouping(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	base := time.Now()

	// Three quick messages by A, one by B, then A again after a long gap.
	msgs := []models.Message{
		renderMsg("m1", "alice", base, 0),
		renderMsg("m2", "alice", base.Add(30*time.Second), 0),
		renderMsg("m3", "alice", base.Add(time.Minute), 0),
		renderMsg("m4", "bob", base.Add(90*time.Second), 0),
		renderMsg("m5", "alice", base.Add(20*time.Minute), 0),
	}

	out := s.Decide(msgs, "viewer", models.Position{TimestampSeconds: 9999}, models.ContentTypeMovie, false)

	wantStarts := []bool{true, false, false, true, true}
	for i, want := range wantStarts {
		if out[i].GroupStart != want {
			t.Errorf("message %s GroupStart = %v, want %v", out[i].Message.ID, out[i].GroupStart, want)
		}
	}
}

func TestRenderServiceGroupingBreaksOnGap(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	base := time.Now()

	msgs := []models.Message{
		renderMsg("m1", "alice", base, 0),
		renderMsg("m2", "alice", base.Add(5*time.Minute), 0), // exactly at the gap
	}

	out := s.Decide(msgs, "viewer", models.Position{}, models.ContentTypeMovie, false)
	if !out[1].GroupStart {
		t.Fatal("a gap equal to the limit must start a new group")
	}
}

func TestRenderServiceGroupingBreaksOnThreadChange(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	base := time.Now()
	parent := "m1"

	reply := renderMsg("m2", "alice", base.Add(10*time.Second), 0)
	reply.ThreadDepth = 1
	reply.ParentMessageID = &parent

	msgs := []models.Message{
		renderMsg("m1", "alice", base, 0),
		reply,
	}

	out := s.Decide(msgs, "viewer", models.Position{}, models.ContentTypeMovie, false)
	if !out[1].GroupStart {
		t.Fatal("a reply must not continue the parent's group")
	}
}

func TestRenderServiceBlursAheadMessages(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	base := time.Now()

	msgs := []models.Message{
		renderMsg("m1", "bob", base, 600), // at the viewer's position
		renderMsg("m2", "bob", base, 700), // 100s ahead
		renderMsg("m3", "bob", base, 650), // within the 60s buffer
	}

	out := s.Decide(msgs, "viewer", models.Position{TimestampSeconds: 600}, models.ContentTypeMovie, true)

	if out[0].Blurred {
		t.Error("message at the viewer's position must not blur")
	}
	if !out[1].Blurred {
		t.Error("message 100s ahead must blur")
	}
	if out[2].Blurred {
		t.Error("message inside the buffer must not blur")
	}
}

func TestRenderServiceSpoilerPolicyOff(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	msgs := []models.Message{renderMsg("m1", "bob", time.Now(), 5000)}

	out := s.Decide(msgs, "viewer", models.Position{TimestampSeconds: 0}, models.ContentTypeMovie, false)
	if out[0].Blurred {
		t.Fatal("nothing blurs when the room's spoiler policy is off")
	}
}

func TestRenderServiceOwnMessagesNeverBlur(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	msgs := []models.Message{renderMsg("m1", "viewer", time.Now(), 5000)}

	out := s.Decide(msgs, "viewer", models.Position{TimestampSeconds: 0}, models.ContentTypeMovie, true)
	if out[0].Blurred {
		t.Fatal("the viewer's own message must never blur")
	}
}

func TestRenderServiceMessagesWithoutPositionNeverBlur(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	msg := renderMsg("m1", "bob", time.Now(), 0)
	msg.Position = nil

	out := s.Decide([]models.Message{msg}, "viewer", models.Position{TimestampSeconds: 0}, models.ContentTypeMovie, true)
	if out[0].Blurred {
		t.Fatal("a message without a position carries no spoiler risk")
	}
}

func TestRenderServiceRevealSticks(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	msgs := []models.Message{renderMsg("m1", "bob", time.Now(), 5000)}
	viewer := models.Position{TimestampSeconds: 0}

	out := s.Decide(msgs, "viewer", viewer, models.ContentTypeMovie, true)
	if !out[0].Blurred {
		t.Fatal("far-ahead message must blur before reveal")
	}

	s.Reveal("m1")

	out = s.Decide(msgs, "viewer", viewer, models.ContentTypeMovie, true)
	if out[0].Blurred {
		t.Fatal("revealed message must stay revealed")
	}
}

func TestRenderServiceReplyInheritsParentPosition(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	base := time.Now()
	parentID := "m1"

	parent := renderMsg(parentID, "bob", base, 5000)
	reply := renderMsg("m2", "carol", base.Add(time.Minute), 0)
	reply.ThreadDepth = 1
	reply.ParentMessageID = &parentID
	reply.Position = nil

	out := s.Decide([]models.Message{parent, reply}, "viewer", models.Position{TimestampSeconds: 0}, models.ContentTypeMovie, true)

	if !out[1].Blurred {
		t.Fatal("a reply to a far-ahead parent must blur")
	}
	if out[1].Parent == nil || out[1].Parent.ID != parentID {
		t.Fatal("reply must carry the resolved parent preview")
	}
}

func TestRenderServiceReplyWithUnknownParent(t *testing.T) {
	s := NewRenderService(5 * time.Minute)
	ghost := "gone"

	reply := renderMsg("m1", "carol", time.Now(), 5000)
	reply.ThreadDepth = 1
	reply.ParentMessageID = &ghost

	out := s.Decide([]models.Message{reply}, "viewer", models.Position{TimestampSeconds: 0}, models.ContentTypeMovie, true)

	if out[0].Parent != nil {
		t.Fatal("unknown parent must degrade to no preview")
	}
	if out[0].Blurred {
		t.Fatal("a reply with no resolvable parent position must not blur")
	}
}
