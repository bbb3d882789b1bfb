package domain

import "time"

// SessionAuthenticatedEvent represents the payload for squad.session.authenticated messages.
type SessionAuthenticatedEvent struct {
	EventID         string
	UserKey         UserKey
	Address         string
	Network         Network
	ValidUntilEpoch uint64
	AuthenticatedAt time.Time
}

// TransferExecutedEvent represents the payload for squad.wallet.sent messages.
type TransferExecutedEvent struct {
	EventID    string
	UserKey    UserKey
	Sender     string
	Recipient  string
	AmountMist uint64
	CoinType   string
	Digest     string
	ExecutedAt time.Time
}

// WithdrawalExecutedEvent represents the payload for squad.wallet.withdrawn messages.
type WithdrawalExecutedEvent struct {
	EventID     string
	UserKey     UserKey
	Sender      string
	Destination string
	AmountMist  uint64
	CoinType    string
	Digest      string
	ExecutedAt  time.Time
}

// ActivityRecord is one row of the per-group activity leaderboard.
type ActivityRecord struct {
	GroupID int64
	UserID  int64
	Count   int64
}
