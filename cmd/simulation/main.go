package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/fatih/color"
)

const baseURL = "http://localhost:3000/api/dialogue/v1"

// Simplified DTOs for the script
type SendMessageRequest struct {
	UserId int64  `json:"user_id"`
	Text   string `json:"text"`
}

type SendMessageResponse struct {
	Data struct {
		Reply       string   `json:"reply"`
		State       string   `json:"state"`
		Suggestions []string `json:"suggestions"`
	} `json:"data"`
}

func main() {
	userId := int64(1001)
	if len(os.Args) > 1 {
		fmt.Sscanf(os.Args[1], "%d", &userId)
	}

	bot := color.New(color.FgCyan)
	state := color.New(color.FgHiBlack)
	hint := color.New(color.FgYellow)

	fmt.Println("=== Dialogue Simulation Client ===")
	fmt.Printf("Connecting as User: %d\n", userId)
	fmt.Println("Type a message, a command token (new_note, list_notes, ...) or 'exit'.")

	// Open the conversation the way a chat adapter would.
	if reply, err := sendMessage(userId, "/start"); err != nil {
		log.Fatalf("Failed to reach server: %v", err)
	} else {
		printReply(bot, state, hint, reply)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYOU: ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		reply, err := sendMessage(userId, text)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printReply(bot, state, hint, reply)
	}
}

func printReply(bot, state, hint *color.Color, res *SendMessageResponse) {
	bot.Printf("BOT: %s\n", res.Data.Reply)
	state.Printf("     [state: %s]\n", res.Data.State)
	if len(res.Data.Suggestions) > 0 {
		hint.Printf("     buttons: %s\n", strings.Join(res.Data.Suggestions, " | "))
	}
}

func sendMessage(userId int64, text string) (*SendMessageResponse, error) {
	payload := SendMessageRequest{
		UserId: userId,
		Text:   text,
	}
	jsonBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", baseURL+"/message", bytes.NewBuffer(jsonBytes))
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API Error %d: %s", resp.StatusCode, string(body))
	}

	var res SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}
