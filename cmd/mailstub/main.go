package main

import (
	"log"
	"net/http"
	"time"

	"csvdash/adapters/mailstub"
	"csvdash/internal/config"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv := &http.Server{
		Addr:              "127.0.0.1:" + appConfig.Stub.Port,
		Handler:           mailstub.NewServer().Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("[MailStub] Listening on http://%s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Mail stub failed: %v", err)
	}
}
