package domain

import "fmt"

// UserKey identifies a chat participant: the Telegram user together with the
// chat the command arrived from. All session, pending-login, and conversation
// state is keyed by value copies of this type.
type UserKey struct {
	UserID int64
	ChatID int64
}

// String renders the key in "user:chat" form, suitable for log fields and
// cache key construction.
func (k UserKey) String() string {
	return fmt.Sprintf("%d:%d", k.UserID, k.ChatID)
}

// IsZero reports whether the key carries no identity.
func (k UserKey) IsZero() bool {
	return k.UserID == 0 && k.ChatID == 0
}
