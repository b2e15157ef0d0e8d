package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ad/go-telegram-hotspots/internal/fsm"
	"github.com/ad/go-telegram-hotspots/internal/models"
	"github.com/google/uuid"
)

const (
	CommandStart = "/start"
	CommandAdd   = "/add"
	CommandSkip  = "/skip"
)

const (
	msgGreeting = "Привет! Я помогу отслеживать точки с высокими бонусами в Yandex Delivery.\n\n" +
		"Используй /add, чтобы добавить новую точку."
	msgAskLocation   = "📍 Отправьте свою геопозицию (в момент получения заказа)."
	msgLocationRetry = "Пожалуйста, отправьте геопозицию через 📎 → Геопозиция."
	msgAskBonus      = "💰 Введите размер бонуса в BYN (только число, например: 12):"
	msgBonusRetry    = "Пожалуйста, введите корректное число (например: 12 или 15.5)."
	msgAskComment    = "✏️ (Опционально) Напишите комментарий (например: 'пятница вечер', 'дождь') или нажмите /skip:"
	msgSaveFailed    = "⚠️ Не удалось сохранить точку. Отправьте комментарий ещё раз или нажмите /skip."
	msgNoDialog      = "Чтобы добавить точку, используйте /add."
)

type EventKind int

const (
	EventStart EventKind = iota
	EventAdd
	EventSkip
	EventLocation
	EventText
)

// Event is one inbound message, already mapped away from transport types.
type Event struct {
	UserID    int64
	Kind      EventKind
	Text      string
	Latitude  float64
	Longitude float64
}

type ReportSink interface {
	Insert(report *models.Report) error
}

// DialogEngine advances a user's dialogue one event at a time:
// /add → location → bonus → comment, then a single commit to storage.
// Invalid input re-prompts in place and never loses collected fields.
type DialogEngine struct {
	store  *SessionStore
	spots  ReportSink
	sender Sender

	now             func() time.Time
	newSubmissionID func() string
}

func NewDialogEngine(store *SessionStore, spots ReportSink, sender Sender) *DialogEngine {
	return &DialogEngine{
		store:           store,
		spots:           spots,
		sender:          sender,
		now:             time.Now,
		newSubmissionID: uuid.NewString,
	}
}

// Handle applies one event under the user's session lock. Events from the
// same user are serialized here; distinct users proceed in parallel.
func (e *DialogEngine) Handle(ctx context.Context, ev Event) {
	e.store.WithSession(ev.UserID, func(sess *models.Session) *models.Session {
		return e.apply(ctx, ev, sess)
	})
}

func (e *DialogEngine) apply(ctx context.Context, ev Event, sess *models.Session) *models.Session {
	switch ev.Kind {
	case EventStart:
		// Greeting never touches dialogue state.
		e.send(ctx, ev.UserID, msgGreeting)
		return sess
	case EventAdd:
		// Re-entrant: /add mid-dialogue abandons the previous draft.
		e.send(ctx, ev.UserID, msgAskLocation)
		return &models.Session{
			UserID:    ev.UserID,
			Step:      fsm.StateAwaitingLocation,
			UpdatedAt: e.now().UTC(),
		}
	}

	if sess == nil {
		e.send(ctx, ev.UserID, msgNoDialog)
		return nil
	}

	sess.UpdatedAt = e.now().UTC()

	switch sess.Step {
	case fsm.StateAwaitingLocation:
		return e.applyLocationStep(ctx, ev, sess)
	case fsm.StateAwaitingBonus:
		return e.applyBonusStep(ctx, ev, sess)
	case fsm.StateAwaitingComment:
		return e.applyCommentStep(ctx, ev, sess)
	}
	return sess
}

func (e *DialogEngine) applyLocationStep(ctx context.Context, ev Event, sess *models.Session) *models.Session {
	if ev.Kind != EventLocation || !ValidCoordinates(ev.Latitude, ev.Longitude) {
		e.send(ctx, ev.UserID, msgLocationRetry)
		return sess
	}

	lat, lon := ev.Latitude, ev.Longitude
	sess.Draft.Latitude = &lat
	sess.Draft.Longitude = &lon
	sess.Step = fsm.StateAwaitingBonus
	e.send(ctx, ev.UserID, msgAskBonus)
	return sess
}

func (e *DialogEngine) applyBonusStep(ctx context.Context, ev Event, sess *models.Session) *models.Session {
	if ev.Kind != EventText {
		e.send(ctx, ev.UserID, msgBonusRetry)
		return sess
	}

	bonus, err := ParseBonus(ev.Text)
	if err != nil {
		e.send(ctx, ev.UserID, msgBonusRetry)
		return sess
	}

	sess.Draft.BonusAmount = &bonus
	// The draft is complete once the bonus lands; the submission id minted
	// here survives storage retries so the commit stays exactly-once.
	sess.Draft.SubmissionID = e.newSubmissionID()
	sess.Step = fsm.StateAwaitingComment
	e.send(ctx, ev.UserID, msgAskComment)
	return sess
}

func (e *DialogEngine) applyCommentStep(ctx context.Context, ev Event, sess *models.Session) *models.Session {
	var comment string
	switch ev.Kind {
	case EventSkip:
		comment = ""
	case EventText:
		comment = ResolveComment(ev.Text)
	default:
		e.send(ctx, ev.UserID, msgAskComment)
		return sess
	}

	report := &models.Report{
		SubmissionID: sess.Draft.SubmissionID,
		UserID:       sess.UserID,
		Latitude:     *sess.Draft.Latitude,
		Longitude:    *sess.Draft.Longitude,
		BonusAmount:  *sess.Draft.BonusAmount,
		Comment:      comment,
		CreatedAt:    e.now().UTC(),
	}

	if err := e.spots.Insert(report); err != nil {
		// Keep the session: the user retries the comment step instead of
		// re-entering location and bonus.
		e.send(ctx, ev.UserID, msgSaveFailed)
		return sess
	}

	e.send(ctx, ev.UserID, fmt.Sprintf("✅ Сохранено!\nБонус: %s BYN\nКоординаты: %.4f, %.4f",
		strconv.FormatFloat(report.BonusAmount, 'f', -1, 64), report.Latitude, report.Longitude))
	return nil
}

func (e *DialogEngine) send(ctx context.Context, userID int64, text string) {
	_ = e.sender.SendText(ctx, userID, text)
}
