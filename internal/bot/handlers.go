package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Singularity-Shift/sui-squad/internal/core/domain"
	"github.com/Singularity-Shift/sui-squad/internal/core/port"
	"github.com/Singularity-Shift/sui-squad/internal/usecase"
)

const helpText = `Sui Squad wallet commands:
/login - connect your wallet with zkLogin
/fund - show your deposit address
/balance - show your SUI balance
/wallet - show your wallet address
/send <address> <amount> - send SUI to another address
/withdraw <address> <amount> - withdraw SUI to an external address
/top - group activity leaderboard
/prompt <text> - ask the assistant
/logout - disconnect your wallet`

// Handlers owns the per-command behaviour. Every wallet command translates
// the service error taxonomy into chat guidance instead of surfacing raw
// errors to the user.
type Handlers struct {
	messenger port.Messenger
	sessions  *usecase.SessionService
	wallet    *usecase.WalletService
	prompt    *usecase.PromptService
	network   domain.Network
	logger    *zap.Logger
}

// NewHandlers constructs a Handlers instance.
func NewHandlers(messenger port.Messenger, sessions *usecase.SessionService, wallet *usecase.WalletService, prompt *usecase.PromptService, network domain.Network, log *zap.Logger) *Handlers {
	return &Handlers{
		messenger: messenger,
		sessions:  sessions,
		wallet:    wallet,
		prompt:    prompt,
		network:   network,
		logger:    log,
	}
}

func (h *Handlers) reply(ctx context.Context, key domain.UserKey, text string) {
	if err := h.messenger.SendMessage(ctx, key.ChatID, text); err != nil {
		h.logger.Warn("send reply",
			zap.String("user_key", key.String()),
			zap.Error(err),
		)
	}
}

// replyError turns a service error into user guidance.
func (h *Handlers) replyError(ctx context.Context, key domain.UserKey, err error) {
	var text string
	switch {
	case errors.Is(err, usecase.ErrAuthRequired):
		text = "You are not logged in. Use /login to connect your wallet."
	case errors.Is(err, usecase.ErrSessionExpired):
		text = "Your session has expired. Use /login to reconnect your wallet."
	case errors.Is(err, usecase.ErrInvalidProof):
		text = "Login verification failed. Use /login to start over."
	case errors.Is(err, usecase.ErrUpstreamUnavailable):
		text = "A backing service is unavailable right now. Please try again in a moment."
	case errors.Is(err, usecase.ErrConfiguration):
		text = "The bot is misconfigured. Please contact the operator."
	default:
		text = fmt.Sprintf("That did not work: %v", err)
	}

	h.logger.Debug("command rejected",
		zap.String("user_key", key.String()),
		zap.Error(err),
	)
	h.reply(ctx, key, text)
}

// Help sends the command overview.
func (h *Handlers) Help(ctx context.Context, key domain.UserKey) {
	h.reply(ctx, key, helpText)
}

// Unknown reports an unrecognized command.
func (h *Handlers) Unknown(ctx context.Context, key domain.UserKey, command string) {
	h.reply(ctx, key, fmt.Sprintf("Unknown command %s. Use /help for the command list.", command))
}

// Login starts a zkLogin attempt and sends the login button.
func (h *Handlers) Login(ctx context.Context, key domain.UserKey) {
	if h.sessions.GetState(key) == domain.StateAuthenticated {
		h.reply(ctx, key, "You are already logged in. Use /wallet to see your address or /logout first.")
		return
	}

	loginURL, err := h.sessions.BeginLogin(ctx, key, h.network)
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}

	err = h.messenger.SendLoginButton(ctx, key.ChatID,
		"Tap the button to sign in. The link is valid for one attempt.",
		"Sign in with Google", loginURL)
	if err != nil {
		h.logger.Warn("send login button", zap.Error(err))
	}
}

// Logout drops the user's session state.
func (h *Handlers) Logout(ctx context.Context, key domain.UserKey) {
	h.sessions.Logout(key)
	h.reply(ctx, key, "Logged out. Your wallet stays on chain; /login reconnects it.")
}

// Fund shows the deposit address.
func (h *Handlers) Fund(ctx context.Context, key domain.UserKey) {
	address, err := h.wallet.GetWallet(ctx, key)
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	h.reply(ctx, key, fmt.Sprintf("Send SUI to this address to fund your wallet:\n%s", address))
}

// Balance reports the SUI balance.
func (h *Handlers) Balance(ctx context.Context, key domain.UserKey) {
	balance, err := h.wallet.GetBalance(ctx, key, "")
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	h.reply(ctx, key, fmt.Sprintf("Balance: %s SUI (%d coins)", usecase.FormatSuiAmount(balance.TotalBalance), balance.CoinCount))
}

// Wallet reports the wallet address.
func (h *Handlers) Wallet(ctx context.Context, key domain.UserKey) {
	address, err := h.wallet.GetWallet(ctx, key)
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	h.reply(ctx, key, fmt.Sprintf("Your wallet address:\n%s", address))
}

// Send transfers SUI to another address.
func (h *Handlers) Send(ctx context.Context, key domain.UserKey, args []string) {
	if len(args) < 2 {
		h.reply(ctx, key, "Usage: /send <address> <amount>")
		return
	}

	digest, err := h.wallet.Send(ctx, key, args[0], args[1], "")
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	h.reply(ctx, key, fmt.Sprintf("Sent %s SUI.\nTransaction: %s", args[1], digest))
}

// Withdraw moves SUI to an external address.
func (h *Handlers) Withdraw(ctx context.Context, key domain.UserKey, args []string) {
	if len(args) < 2 {
		h.reply(ctx, key, "Usage: /withdraw <address> <amount>")
		return
	}

	digest, err := h.wallet.Withdraw(ctx, key, args[0], args[1], "")
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	h.reply(ctx, key, fmt.Sprintf("Withdrew %s SUI.\nTransaction: %s", args[1], digest))
}

// Top reports the group activity leaderboard.
func (h *Handlers) Top(ctx context.Context, key domain.UserKey) {
	records, err := h.wallet.Top(ctx, key.ChatID, 10)
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	if len(records) == 0 {
		h.reply(ctx, key, "No wallet activity recorded for this group yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Most active wallets in this group:\n")
	for i, record := range records {
		fmt.Fprintf(&sb, "%d. user %d with %d actions\n", i+1, record.UserID, record.Count)
	}
	h.reply(ctx, key, sb.String())
}

// Prompt routes free text through the assistant.
func (h *Handlers) Prompt(ctx context.Context, key domain.UserKey, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		h.reply(ctx, key, "Usage: /prompt <what you want to do>")
		return
	}

	answer, err := h.prompt.HandlePrompt(ctx, key, text)
	if err != nil {
		h.replyError(ctx, key, err)
		return
	}
	h.reply(ctx, key, answer)
}
