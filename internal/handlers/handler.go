package handlers

import (
	"context"
	"strings"

	"github.com/ad/go-telegram-hotspots/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
)

type BotHandler struct {
	engine   *services.DialogEngine
	errorMgr *services.ErrorManager
}

func NewBotHandler(engine *services.DialogEngine, errorMgr *services.ErrorManager) *BotHandler {
	return &BotHandler{
		engine:   engine,
		errorMgr: errorMgr,
	}
}

// HandleUpdate runs on the transport's per-update goroutine. It maps the
// update to a dialogue event and hands it to the engine, which serializes
// same-user events on the session lock.
func (h *BotHandler) HandleUpdate(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	defer h.recoverPanic(ctx, msg.From.ID)

	ev, ok := MapMessage(msg)
	if !ok {
		return
	}
	h.engine.Handle(ctx, ev)
}

func (h *BotHandler) recoverPanic(ctx context.Context, userID int64) {
	if r := recover(); r != nil {
		h.errorMgr.ReportPanic(ctx, userID, r)
	}
}

// MapMessage converts a Telegram message into a dialogue event. The second
// return is false for messages the bot has nothing to do with (stickers,
// photos, media groups and the like).
func MapMessage(msg *tgmodels.Message) (services.Event, bool) {
	ev := services.Event{UserID: msg.From.ID}

	if msg.Location != nil {
		ev.Kind = services.EventLocation
		ev.Latitude = msg.Location.Latitude
		ev.Longitude = msg.Location.Longitude
		return ev, true
	}

	if msg.Text == "" {
		return services.Event{}, false
	}

	switch command(msg.Text) {
	case services.CommandStart:
		ev.Kind = services.EventStart
	case services.CommandAdd:
		ev.Kind = services.EventAdd
	case services.CommandSkip:
		ev.Kind = services.EventSkip
	default:
		ev.Kind = services.EventText
		ev.Text = msg.Text
	}
	return ev, true
}

// command strips a trailing @botname so "/add@hotspots_bot" works in groups.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	if at := strings.IndexByte(text, '@'); at > 0 {
		return text[:at]
	}
	return text
}
