package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram pushes operational alerts to the staff chat. Sends are
// fire-and-forget: a delivery failure is logged and never propagated.
type Telegram struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	staffChat int64
}

// New returns nil when no token is configured; a nil *Telegram is a no-op.
func New(token string, staffChat int64, log *slog.Logger) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api, log: log, staffChat: staffChat}, nil
}

func (t *Telegram) send(text string) {
	if t == nil {
		return
	}
	go func() {
		if _, err := t.api.Send(tgbotapi.NewMessage(t.staffChat, text)); err != nil {
			t.log.Warn("telegram notify failed", "err", err)
		}
	}()
}

func (t *Telegram) NewConsultation(clientName, subject string) {
	t.send(fmt.Sprintf("New consultation from «%s»: %s", clientName, subject))
}

func (t *Telegram) BalanceExhausted(clientName string) {
	t.send(fmt.Sprintf("Client «%s» has run out of tickets", clientName))
}
