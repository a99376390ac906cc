package database

import "errors"

var (
	// ErrNotParticipant возвращается и когда диалог не найден, и когда
	// пользователь не является участником: наружу уходит один отказ.
	ErrNotParticipant = errors.New("not a participant of this conversation")

	ErrSelfConversation = errors.New("cannot start a conversation with yourself")
)
