package port

import "context"

// Messenger is the opaque bot transport: deliver a message or a login button
// to a chat. Receiving updates is handled by the transport adapter itself.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendLoginButton(ctx context.Context, chatID int64, text, label, url string) error
}
