package main

import (
	"log"
	"os"
	"time"

	"github.com/hushhome/hushhome-golang/internal/ai"
	"github.com/hushhome/hushhome-golang/internal/database"
	"github.com/hushhome/hushhome-golang/internal/handlers"
	"github.com/hushhome/hushhome-golang/internal/routes"
	"github.com/joho/godotenv"
)

func main() {
	// 0. --- Load Environment Variables (.env) ---
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// 1. --- Main Database Connection (Read/Write) ---
	dsn := os.Getenv("DB_DSN_PRIMARY")
	if dsn == "" {
		log.Fatal("CRITICAL ERROR: DB_DSN_PRIMARY environment variable is not set.")
	}
	db, err := database.OpenDB(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to primary database: %v", err)
	}
	defer db.Close()
	log.Println("Primary database connection pool established")

	app := &handlers.Handlers{
		DB: db,
	}

	// 2. --- AI Assistant (Optional) ---
	// Needs both GEMINI_API_KEY and a read-only DSN; without them the AI
	// routes answer 503 and everything else runs normally.
	geminiKey := os.Getenv("GEMINI_API_KEY")
	readOnlyDSN := os.Getenv("DB_DSN_READONLY")
	if geminiKey != "" && readOnlyDSN != "" {
		dbReadOnly, err := database.OpenDB(readOnlyDSN)
		if err != nil {
			log.Fatalf("Failed to connect to read-only database: %v", err)
		}
		defer dbReadOnly.Close()

		aiService, err := ai.NewAIService(geminiKey, dbReadOnly)
		if err != nil {
			log.Fatalf("Failed to initialize AI service: %v", err)
		}
		app.DBReadOnly = dbReadOnly
		app.AIService = aiService
		log.Println("AI assistant enabled")
	} else {
		log.Println("WARNING: GEMINI_API_KEY or DB_DSN_READONLY not set. AI assistant disabled.")
	}

	// 3. --- Background Worker ---
	// The match sweep also runs inline after mutations; this ticker picks up
	// anything an inline sweep missed (e.g. a failed transaction).
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		log.Println("Background worker started: periodic match sweep")

		for range ticker.C {
			if err := app.RunMatchSweep(); err != nil {
				log.Printf("WARNING: periodic match sweep failed: %v", err)
			}
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	// --- Start Server ---
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Starting HushHome API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
