// Package telegram bridges Telegram chats to the service endpoints of the API:
// chat users register with an invite and log in to receive a short lived
// credential that the client application then activates.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	appErrors "github.com/dpweb/dpweb/pkg/errors"
	"github.com/dpweb/dpweb/pkg/logger"
)

// Sender delivers replies. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bridge turns chat commands into API calls.
type Bridge struct {
	backend   Backend
	log       *zap.Logger
	parseMode string
}

// NewBridge constructs a Bridge.
func NewBridge(backend Backend) *Bridge {
	return &Bridge{
		backend:   backend,
		log:       logger.WithModule("telegram"),
		parseMode: tgbotapi.ModeMarkdown,
	}
}

// Run consumes updates until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context, bot *tgbotapi.BotAPI) error {
	if bot == nil {
		return errors.New("telegram: bot is required")
	}
	b.log.Info("authorized", zap.String("account", bot.Self.UserName))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := bot.GetUpdatesChan(updateConfig)
	defer bot.StopReceivingUpdates()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.HandleUpdate(ctx, bot, update); err != nil {
				b.log.Warn("send reply", zap.Error(err))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// HandleUpdate answers a single update. Updates without a text message are ignored.
func (b *Bridge) HandleUpdate(ctx context.Context, sender Sender, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	reply := b.HandleMessage(ctx, msg.From.ID, msg.Text)
	out := tgbotapi.NewMessage(msg.Chat.ID, reply)
	out.ParseMode = b.parseMode
	_, err := sender.Send(out)
	return err
}

// HandleMessage routes a chat command and returns the reply text.
func (b *Bridge) HandleMessage(ctx context.Context, telegramID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return helpMessage()
	}

	// Commands may be addressed as /login@botname in groups.
	command, _, _ := strings.Cut(fields[0], "@")
	switch command {
	case "/start", "/help":
		return helpMessage()
	case "/register":
		return b.handleRegister(ctx, telegramID, fields[1:])
	case "/login":
		return b.handleLogin(ctx, telegramID)
	default:
		return "Unknown command. Use /help."
	}
}

func (b *Bridge) handleRegister(ctx context.Context, telegramID int64, args []string) string {
	if len(args) != 2 {
		return "Use /register <invite> <username>"
	}
	invite, username := args[0], args[1]
	if !v1.CheckUsername(username) {
		return "A username may only contain latin letters, digits, dots and dashes."
	}

	issued, err := b.backend.ClaimInvite(ctx, invite, username, telegramID)
	if err != nil {
		return b.failure("register", err, map[appErrors.Kind]string{
			appErrors.NotFound:     "The invite does not exist or was already used.",
			appErrors.Conflict:     "That username or Telegram account is already registered.",
			appErrors.InvalidInput: "The username was rejected. Use latin letters, digits, dots and dashes.",
		})
	}
	return "Welcome, " + username + "!\n" + credentialMessage(issued)
}

func (b *Bridge) handleLogin(ctx context.Context, telegramID int64) string {
	issued, err := b.backend.IssueToken(ctx, telegramID)
	if err != nil {
		return b.failure("login", err, map[appErrors.Kind]string{
			appErrors.NotFound: "No account is linked to this Telegram account. Use /register <invite> <username>.",
		})
	}
	return credentialMessage(issued)
}

func (b *Bridge) failure(op string, err error, messages map[appErrors.Kind]string) string {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		if msg, ok := messages[appErr.Kind]; ok {
			return msg
		}
	}
	b.log.Warn("backend call failed", zap.String("op", op), zap.Error(err))
	return "The service is unavailable right now. Try again later."
}

func credentialMessage(issued v1.IssueUserTokenResponse) string {
	expires := time.UnixMilli(issued.ExpiresIn).UTC().Format(time.RFC3339)
	return fmt.Sprintf("Your login code is `%d:%s`\nEnter it in the app before %s.", issued.UserID, issued.Token, expires)
}

func helpMessage() string {
	return strings.Join([]string{
		"Available commands:",
		"/register <invite> <username> - create an account from an invite",
		"/login - get a login code for the app",
		"/help - this message",
	}, "\n")
}
