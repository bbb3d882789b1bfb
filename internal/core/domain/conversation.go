package domain

import "time"

// ConversationEntry tracks the most recent LLM turn for a (user, chat) pair
// so multi-step tool-calling conversations can be continued server side.
// An entry older than the cache TTL is logically absent even before the
// sweeper physically removes it.
type ConversationEntry struct {
	ResponseID   string
	LastActivity time.Time
}
