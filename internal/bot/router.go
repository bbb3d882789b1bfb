package bot

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/infra/telegram"
)

const pollRetryBackoff = 5 * time.Second

// Router consumes Telegram updates and dispatches them to command handlers.
type Router struct {
	client   *telegram.Client
	handlers *Handlers
	logger   *zap.Logger
}

// NewRouter constructs a Router instance.
func NewRouter(client *telegram.Client, handlers *Handlers, log *zap.Logger) *Router {
	return &Router{client: client, handlers: handlers, logger: log}
}

// Run long-polls for updates until the context is cancelled. Poll failures
// are retried with a fixed backoff so a transient Telegram outage never
// kills the loop.
func (r *Router) Run(ctx context.Context) error {
	var offset int64

	for {
		updates, err := r.client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Warn("poll updates", zap.Error(err))
			select {
			case <-time.After(pollRetryBackoff):
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			r.handleUpdate(ctx, update)
		}
	}
}

func (r *Router) handleUpdate(ctx context.Context, update telegram.Update) {
	if update.Text == "" || update.UserID == 0 {
		return
	}

	key := domain.UserKey{UserID: update.UserID, ChatID: update.ChatID}
	command, args := splitCommand(update.Text)

	switch command {
	case "/start", "/help":
		r.handlers.Help(ctx, key)
	case "/login":
		r.handlers.Login(ctx, key)
	case "/logout":
		r.handlers.Logout(ctx, key)
	case "/fund":
		r.handlers.Fund(ctx, key)
	case "/balance":
		r.handlers.Balance(ctx, key)
	case "/wallet":
		r.handlers.Wallet(ctx, key)
	case "/send":
		r.handlers.Send(ctx, key, args)
	case "/withdraw":
		r.handlers.Withdraw(ctx, key, args)
	case "/top":
		r.handlers.Top(ctx, key)
	case "/prompt":
		r.handlers.Prompt(ctx, key, strings.Join(args, " "))
	default:
		if strings.HasPrefix(command, "/") {
			r.handlers.Unknown(ctx, key, command)
			return
		}
		// Bare text in a private chat goes to the assistant.
		if update.ChatType == "private" {
			r.handlers.Prompt(ctx, key, update.Text)
		}
	}
}

// splitCommand separates the leading command token from its arguments and
// strips a trailing @botname mention.
func splitCommand(text string) (string, []string) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return "", nil
	}

	command := fields[0]
	if strings.HasPrefix(command, "/") {
		if at := strings.Index(command, "@"); at > 0 {
			command = command[:at]
		}
		command = strings.ToLower(command)
	}
	return command, fields[1:]
}
