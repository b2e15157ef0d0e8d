package services

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"

	"github.com/go-telegram/bot"
)

// ErrorManager surfaces handler panics and send failures. Everything is
// logged; when an admin chat is configured the report is forwarded there too.
type ErrorManager struct {
	bot     *bot.Bot
	adminID int64
}

func NewErrorManager(b *bot.Bot, adminID int64) *ErrorManager {
	return &ErrorManager{
		bot:     b,
		adminID: adminID,
	}
}

func (e *ErrorManager) ReportPanic(ctx context.Context, userID int64, panicValue interface{}) {
	msg := fmt.Sprintf("🚨 Panic in handler\nUser: [%d]\nError: %v\n\nStack trace:\n%s",
		userID, panicValue, string(debug.Stack()))
	log.Printf("[PANIC] user=%d err=%v", userID, panicValue)
	e.notifyAdmin(ctx, msg)
}

func (e *ErrorManager) ReportSendFailure(ctx context.Context, chatID int64, err error) {
	log.Printf("[SEND FAILED] chat=%d err=%v", chatID, err)
	e.notifyAdmin(ctx, fmt.Sprintf("❌ Failed to send message\nUser: [%d]\nError: %v", chatID, err))
}

func (e *ErrorManager) notifyAdmin(ctx context.Context, msg string) {
	if e.bot == nil || e.adminID == 0 {
		return
	}
	if len(msg) > 4000 {
		msg = msg[:4000] + "\n... (truncated)"
	}
	_, _ = e.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: e.adminID,
		Text:   msg,
	})
}
