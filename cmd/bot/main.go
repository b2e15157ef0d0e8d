package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ad/go-telegram-hotspots/internal/db"
	"github.com/ad/go-telegram-hotspots/internal/handlers"
	"github.com/ad/go-telegram-hotspots/internal/services"
	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/robfig/cron/v3"
	_ "modernc.org/sqlite"
)

const (
	sessionMaxIdle   = 30 * time.Minute
	sessionSweepSpec = "@every 5m"
)

func main() {
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable is required")
	}

	// Optional: failure notifications go to this chat when set.
	var adminID int64
	if adminIDStr := os.Getenv("ADMIN_ID"); adminIDStr != "" {
		var err error
		adminID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			log.Fatalf("Invalid ADMIN_ID: %v", err)
		}
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "hotspots.db"
	}

	sqlDB, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := db.InitSchema(sqlDB); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}

	dbQueue := db.NewQueue(sqlDB)
	defer dbQueue.Close()

	spotRepo := db.NewSpotRepository(dbQueue)
	sessionStore := services.NewSessionStore()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	b, err := bot.New(botToken, bot.WithHTTPClient(15*time.Second, httpClient))
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	// Retry getMe with shorter timeout
	for i := 0; i < 3; i++ {
		log.Printf("Attempting to connect to Telegram API (attempt %d/3)...", i+1)
		getMeCtx, getMeCancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err = b.GetMe(getMeCtx)
		getMeCancel()
		if err == nil {
			log.Printf("Successfully connected to Telegram API")
			break
		}
		log.Printf("Failed to get bot info (attempt %d/3): %v", i+1, err)
		if i < 2 {
			log.Printf("Retrying in 2 seconds...")
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to get bot info after 3 attempts: %v", err)
	}

	errorManager := services.NewErrorManager(b, adminID)
	msgManager := services.NewMessageManager(b, errorManager)
	engine := services.NewDialogEngine(sessionStore, spotRepo, msgManager)
	handler := handlers.NewBotHandler(engine, errorManager)

	b.RegisterHandlerMatchFunc(func(update *tgmodels.Update) bool {
		return true
	}, handler.HandleUpdate, logMiddleware)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(sessionSweepSpec, func() {
		if evicted := sessionStore.EvictIdle(sessionMaxIdle); evicted > 0 {
			log.Printf("Evicted %d idle sessions", evicted)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule session sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	log.Printf("Bot started. DB: %s", dbPath)

	b.Start(ctx)
}

func logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *tgmodels.Update) {
		if update.Message != nil && update.Message.From != nil {
			if update.Message.Location != nil {
				log.Printf("[LOCATION] from=%d lat=%.4f lon=%.4f",
					update.Message.From.ID, update.Message.Location.Latitude, update.Message.Location.Longitude)
			} else {
				log.Printf("[MSG] from=%d text=%q", update.Message.From.ID, update.Message.Text)
			}
		}
		next(ctx, b, update)
	}
}
