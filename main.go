package main

import (
	"log"
	"net/http"
	_ "net/http/pprof"

	"csvdash/adapters/mailer"
	"csvdash/app"
	"csvdash/internal/config"
	"csvdash/internal/templating"
	"csvdash/ports"
	"csvdash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	client := mailer.NewClient(mailer.Config{
		BaseURL: appConfig.Mail.BaseURL,
		Timeout: appConfig.Mail.Timeout,
	})

	var generator ports.EmailGenerator = client
	if appConfig.Mail.Generator == config.GeneratorLocal {
		generator = templating.NewGenerator()
		log.Println("Generating emails locally")
	} else {
		log.Printf("Generating emails through %s/generate-email", appConfig.Mail.BaseURL)
	}

	emails := app.NewEmailService(generator, client, app.EmailServiceConfig{
		Subject:         appConfig.Mail.Subject,
		RecipientColumn: appConfig.Mail.RecipientColumn,
		Concurrency:     appConfig.Mail.Concurrency,
	})

	server, err := ui.NewServer(emails, ui.Options{
		MaxUploadBytes:  appConfig.Data.MaxUploadBytes,
		RecipientColumn: appConfig.Mail.RecipientColumn,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start pprof server for performance profiling
	if appConfig.Profiling.Enabled {
		go func() {
			log.Printf("Profiling server starting on :%s", appConfig.Profiling.Port)
			if err := http.ListenAndServe(":"+appConfig.Profiling.Port, nil); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	log.Printf("Starting csvdash on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
