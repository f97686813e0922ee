package repository

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = redis.Nil

func roomKey(roomID string) string {
	return fmt.Sprintf("moviemoments:room:%s", roomID)
}

func roomMessagesKey(roomID string) string {
	return fmt.Sprintf("moviemoments:room:%s:messages", roomID)
}

func roomChangesChannel(roomID string) string {
	return fmt.Sprintf("moviemoments:room:%s:changes", roomID)
}

// reactionChangesChannel is global; subscribers filter reaction events by
// whether the message is in their own log.
const reactionChangesChannel = "moviemoments:reactions:changes"

func messageKey(msgID string) string {
	return fmt.Sprintf("moviemoments:message:%s", msgID)
}

func messageReactionsKey(msgID string) string {
	return fmt.Sprintf("moviemoments:message:%s:reactions", msgID)
}

func reactionKey(reactionID string) string {
	return fmt.Sprintf("moviemoments:reaction:%s", reactionID)
}

func participantKey(roomID, userID string) string {
	return fmt.Sprintf("moviemoments:room:%s:participant:%s", roomID, userID)
}

func roomParticipantsKey(roomID string) string {
	return fmt.Sprintf("moviemoments:room:%s:participants", roomID)
}
