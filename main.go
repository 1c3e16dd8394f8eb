package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/shelfwise/library/backend/config"
	"github.com/shelfwise/library/backend/handlers"
	"github.com/shelfwise/library/backend/library"
	"github.com/shelfwise/library/backend/middleware"
	"github.com/shelfwise/library/backend/models"
	"github.com/shelfwise/library/backend/service"
	"github.com/shelfwise/library/backend/store"
	"github.com/shelfwise/library/backend/workers"
)

func main() {
	_ = godotenv.Load()
	config.ValidateEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	ctx := context.Background()
	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("mongodb:", err)
	}
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			log.Println("mongodb disconnect:", err)
		}
	}()

	lib, err := library.Open(ctx, db)
	if err != nil {
		log.Fatal("library:", err)
	}

	var covers *service.CoverService
	if cfg.S3Bucket != "" {
		covers, err = service.NewCoverService(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3:", err)
		}
	} else {
		log.Println("warning: AWS_S3_BUCKET not set; cover uploads will fail")
	}

	var sender service.Sender
	if cfg.SNSRegion != "" {
		snsSender, err := service.NewSNSSender(ctx, cfg.SNSRegion, cfg.SMSSenderID)
		if err != nil {
			log.Fatal("sns:", err)
		}
		sender = snsSender
	} else {
		log.Println("warning: SNS_REGION not set; OTP codes are returned in responses (development mode)")
	}
	otp := service.NewOTPService(db, sender)

	authHandler := &handlers.AuthHandler{
		Library:    lib,
		Pending:    db,
		OTP:        otp,
		JWTSecret:  cfg.JWTSecret,
		AdminEmail: cfg.AdminEmail,
		AdminPass:  cfg.AdminPass,
	}
	booksHandler := &handlers.BooksHandler{
		Library:       lib,
		Covers:        covers,
		MaxCoverBytes: cfg.MaxCoverMB * 1024 * 1024,
	}
	borrowsHandler := &handlers.BorrowsHandler{Library: lib}
	reviewsHandler := &handlers.ReviewsHandler{Library: lib}
	feedbackHandler := &handlers.FeedbackHandler{Library: lib}
	activityHandler := &handlers.ActivityHandler{Library: lib}
	usersHandler := &handlers.UsersHandler{Library: lib}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to the library."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/otp/request", authHandler.RequestCode)
		r.Post("/auth/otp/verify", authHandler.VerifyCode)
		r.Get("/books/{id}/cover", booksHandler.Cover)
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))
			r.Get("/books", booksHandler.List)
			r.Get("/books/popular", booksHandler.Popular)
			r.Get("/books/{id}", booksHandler.Get)
			r.Post("/books/{id}/borrow", borrowsHandler.Borrow)
			r.Get("/books/{id}/reviews", reviewsHandler.ListForBook)
			r.Post("/books/{id}/reviews", reviewsHandler.Create)
			r.Put("/reviews/{id}", reviewsHandler.Update)
			r.Delete("/reviews/{id}", reviewsHandler.Delete)
			r.Get("/borrows", borrowsHandler.List)
			r.Post("/borrows/{id}/return", borrowsHandler.Return)
			r.Get("/feedback", feedbackHandler.List)
			r.Post("/feedback", feedbackHandler.Create)
			r.Put("/feedback/{id}", feedbackHandler.Update)
			r.Delete("/feedback/{id}", feedbackHandler.Delete)
			r.Post("/activity", activityHandler.Record)
			r.Get("/activity", activityHandler.History)
			// Admin-only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/books", booksHandler.Create)
				r.Put("/books/{id}", booksHandler.Update)
				r.Delete("/books/{id}", booksHandler.Delete)
				r.Post("/books/{id}/cover", booksHandler.UploadCover)
				r.Post("/borrows/{id}/clear-fine", borrowsHandler.ClearFine)
				r.Get("/users", usersHandler.List)
				r.Patch("/users/{id}/role", usersHandler.UpdateRole)
			})
		})
	})

	stop := make(chan struct{})
	if cfg.SMTPHost != "" {
		reminder := &workers.Reminder{
			Library:  lib,
			SMTPHost: cfg.SMTPHost,
			SMTPPort: cfg.SMTPPort,
			SMTPUser: cfg.SMTPUser,
			SMTPPass: cfg.SMTPPass,
			From:     cfg.ReminderFrom,
			Interval: cfg.ReminderInterval,
		}
		reminder.Start(stop)
	} else {
		log.Println("warning: SMTP_HOST not set; overdue reminder emails disabled")
	}

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Println("server listening on :" + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(stop)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("shutdown:", err)
	}
}
