package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hirewire-api/internal/application/otp"
	"github.com/hirewire-api/internal/config"
	"github.com/hirewire-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/hirewire-api/internal/infrastructure/jwt"
	"github.com/hirewire-api/internal/infrastructure/smtp"
	"github.com/hirewire-api/internal/infrastructure/sns"
	"github.com/hirewire-api/internal/realtime"
	transporthttp "github.com/hirewire-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available: %v", err)
	}

	// SMTP mailer.
	mailer := smtp.NewMailer(cfg)

	// SNS SMS sender (optional — graceful fallback).
	var smsSender sns.SMSSender
	if sender, err := sns.NewSender(cfg); err == nil {
		smsSender = sender
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}

	// In-memory OTP store with its background sweeper. All state is lost on
	// restart; clients simply request a new code.
	otpSvc := otp.NewService(cfg.OTP)
	otpSvc.Start()
	defer otpSvc.Stop()

	hub := realtime.NewHub()

	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo:      dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		JobRepo:          dynamo.NewJobRepo(dynamoClient, cfg.DynamoTables.Jobs),
		FollowRepo:       dynamo.NewFollowRepo(dynamoClient, cfg.DynamoTables.Follows),
		NotificationRepo: dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications),
		Mailer:           mailer,
		SMSSender:        smsSender,
		JWTProvider:      jwtProvider,
		Hub:              hub,
		OTP:              otpSvc,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.AppPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the notification stream holds its response open
		// indefinitely.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
