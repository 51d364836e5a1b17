package tgbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"joinsync/internal/models"
)

// Telegram error descriptions meaning the bot cannot reach the user at all.
var unreachableDescriptions = []string{
	"chat not found",
	"bot was blocked by the user",
	"user is deactivated",
}

// Notifier delivers decision messages to requesters over the Bot API.
type Notifier struct {
	bot     *tgbotapi.BotAPI
	limiter *rate.Limiter
}

func New(token string, ratePerSec float64) (*Notifier, error) {
	return NewWithEndpoint(token, tgbotapi.APIEndpoint, http.DefaultClient, ratePerSec)
}

// NewWithEndpoint is New against a custom Bot API endpoint, formatted
// like tgbotapi.APIEndpoint.
func NewWithEndpoint(token, endpoint string, client tgbotapi.HTTPClient, ratePerSec float64) (*Notifier, error) {
	b, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, err
	}
	b.Debug = false
	return &Notifier{
		bot:     b,
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}, nil
}

func (n *Notifier) BotName() string {
	return n.bot.Self.UserName
}

func (n *Notifier) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := n.bot.Send(msg)
	return err
}

// Send delivers text to the chat with the given decimal id. Failures
// caused by the user never having opened a chat with the bot wrap
// models.ErrRecipientUnreachable.
func (n *Notifier) Send(ctx context.Context, recipientID, text string) error {
	chatID, err := strconv.ParseInt(strings.TrimSpace(recipientID), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid recipient id %q: %w", recipientID, err)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := n.SendText(chatID, text); err != nil {
		if unreachable(err) {
			return fmt.Errorf("%w: %v", models.ErrRecipientUnreachable, err)
		}
		return err
	}
	return nil
}

func unreachable(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	desc := strings.ToLower(apiErr.Message)
	for _, d := range unreachableDescriptions {
		if strings.Contains(desc, d) {
			return true
		}
	}
	return false
}
