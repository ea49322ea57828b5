package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Drizo7/open-ai-chatbot/controller"
	"github.com/Drizo7/open-ai-chatbot/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Fatalf("FATAL: OPENAI_API_KEY is not set.")
	}

	httpClient := &http.Client{
		Timeout: 5 * time.Minute,
	}

	openaiOpts := []services.OpenAIOption{}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		openaiOpts = append(openaiOpts, services.WithBaseURL(baseURL))
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		openaiOpts = append(openaiOpts, services.WithModel(model))
	}
	openaiClient := services.NewOpenAIClient(httpClient, apiKey, openaiOpts...)

	noteSink, err := newSheetsNoteSink()
	if err != nil {
		log.Fatalf("FATAL: Failed to create Google Sheets client: %v", err)
	}
	log.Println("Successfully connected to Google Sheets.")

	relay := services.NewStreamRelay(noteSink)
	chatService := services.NewChatService(openaiClient, relay)
	chatController := controller.NewChatController(chatService)

	// Setup Gin router
	router := gin.Default()

	// CORS middleware for the browser client
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Chat Relay API",
			"version": "1.0.0",
		})
	})

	router.GET("/thread", chatController.OpenThread)
	router.POST("/message", chatController.PostMessage)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	log.Printf("Go Gin backend server starting on http://localhost:%s", port)
	log.Printf("API endpoints:")
	log.Printf("  GET  http://localhost:%s/thread", port)
	log.Printf("  POST http://localhost:%s/message", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

// newSheetsNoteSink builds the note sink from environment configuration,
// authenticating with a service-account credentials file.
func newSheetsNoteSink() (*services.SheetsNoteSink, error) {
	credentialsFile := os.Getenv("SHEETS_CREDENTIALS_FILE")
	if credentialsFile == "" {
		credentialsFile = "google-sheet.json"
	}
	spreadsheetID := os.Getenv("SPREADSHEET_ID")
	if spreadsheetID == "" {
		log.Fatalf("FATAL: SPREADSHEET_ID is not set.")
	}
	sheetName := os.Getenv("SHEET_NAME")
	if sheetName == "" {
		sheetName = "Sheet2"
	}

	svc, err := sheets.NewService(context.Background(),
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return services.NewSheetsNoteSink(svc, spreadsheetID, sheetName), nil
}
