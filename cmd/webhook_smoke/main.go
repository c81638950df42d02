package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expenses_bot/internal/http/handlers"
)

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	url := flag.String("url", "http://localhost:"+port+"/telegram/webhook", "webhook endpoint")
	userID := flag.Int64("user", 3001, "sender user id")
	text := flag.String("text", "220 به ممد", "message text")
	flag.Parse()

	update := tgbotapi.Update{
		UpdateID: int(time.Now().Unix()),
		Message: &tgbotapi.Message{
			MessageID: 1,
			Date:      int(time.Now().Unix()),
			From:      &tgbotapi.User{ID: *userID, FirstName: "Smoke"},
			Chat:      &tgbotapi.Chat{ID: *userID, Type: "private"},
			Text:      *text,
		},
	}
	body, err := json.Marshal(update)
	if err != nil {
		log.Fatalf("encode update: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret := os.Getenv("TELEGRAM_WEBHOOK_SECRET_TOKEN"); secret != "" {
		req.Header.Set(handlers.SecretTokenHeader, secret)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("post update: %v", err)
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	fmt.Printf("status=%d body=%s\n", resp.StatusCode, out)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
