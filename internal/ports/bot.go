package ports

import "context"

// BotSender is the outbound chat channel. The notifier is the only
// component allowed to call it.
type BotSender interface {
	// SendMessage sends a new message and returns its message id.
	SendMessage(ctx context.Context, chatID int64, text string, keyboard Keyboard) (int64, error)
	// EditMessage rewrites an existing message in place. Fails when
	// the message is too old, deleted, or otherwise uneditable.
	EditMessage(ctx context.Context, chatID int64, messageID int64, text string, keyboard Keyboard) error
}
