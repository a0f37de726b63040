package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for booking TTL

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/rushgit99x/StarTickets-F-sub001/internal/booking"    // Booking and settlement engine
	"github.com/rushgit99x/StarTickets-F-sub001/internal/config"     // Internal config loader
	"github.com/rushgit99x/StarTickets-F-sub001/internal/database"   // MySQL connector
	"github.com/rushgit99x/StarTickets-F-sub001/internal/handler"    // HTTP handlers
	"github.com/rushgit99x/StarTickets-F-sub001/internal/notify"     // PDF rendering and email delivery
	"github.com/rushgit99x/StarTickets-F-sub001/internal/queue"      // RabbitMQ confirmation pipeline
	"github.com/rushgit99x/StarTickets-F-sub001/internal/repository" // Data access layer
	"github.com/rushgit99x/StarTickets-F-sub001/internal/router"     // Route registration
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env always wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs the write-path rate limiter.  A nil client disables
	// limiting rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)

	engine := booking.NewEngine(
		repository.NewSQLStore(db),
		cfg.QRSecret,
		time.Duration(cfg.BookingTTLMin)*time.Minute,
		queue.NewPublisher(),
	)

	renderer := notify.NewPDFRenderer()
	dispatcher := notify.NewDispatcher(renderer, notify.NewSMTPMailer(
		cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom,
	))

	// The consumer drains booking.confirmed and emails tickets out of band.
	// It reconnects on broker failure, so a dead broker only delays email.
	go func() {
		if err := queue.StartDeliveryConsumer(tickets, dispatcher); err != nil {
			log.Printf("delivery consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterBooking(e,
		handler.NewBookingHandler(engine, events, tickets),
		handler.NewPaymentHandler(engine),
		handler.NewTicketHandler(tickets, renderer, dispatcher),
		cfg.JWTSecret, rdb,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
