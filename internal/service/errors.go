package service

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMessageNotFound     = errors.New("message not found")
	ErrAlreadyJoined       = errors.New("user already joined this room")
	ErrNotAMember          = errors.New("user is not a member of this room")
	ErrCreatorCannotLeave  = errors.New("room creator cannot leave the room")

	ErrNotAuthenticated = errors.New("no authenticated identity")
	ErrTokenInvalid     = errors.New("invalid access token")

	ErrAlreadyStarted  = errors.New("service already started")
	ErrNotStarted      = errors.New("service not started")
	ErrEmptyMessage    = errors.New("message text is empty")
	ErrInvalidPosition = errors.New("invalid position payload")
)
