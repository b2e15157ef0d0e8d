package services

import (
	"context"

	"github.com/go-telegram/bot"
)

// Sender delivers outbound text to a user. The dialogue engine talks to this
// interface so tests can capture prompts without a live bot.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type MessageManager struct {
	bot      *bot.Bot
	errMgr   *ErrorManager
	maxRetry int
}

func NewMessageManager(b *bot.Bot, errMgr *ErrorManager) *MessageManager {
	return &MessageManager{
		bot:      b,
		errMgr:   errMgr,
		maxRetry: 2,
	}
}

func (m *MessageManager) SendText(ctx context.Context, chatID int64, text string) error {
	var lastErr error
	for attempt := 0; attempt < m.maxRetry; attempt++ {
		_, err := m.bot.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   text,
		})
		if err == nil {
			return nil
		}
		lastErr = err
	}
	m.errMgr.ReportSendFailure(ctx, chatID, lastErr)
	return lastErr
}
