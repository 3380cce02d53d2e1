package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tetrlabs/professor-server/chat"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	SessionKey string `json:"session_key"`
}

func main() {
	server := flag.String("server", "http://localhost:8080", "Server URL (http/https)")
	email := flag.String("email", "", "User email for authentication")
	password := flag.String("password", "", "User password for authentication")
	classID := flag.String("class", "", "Course class id to chat about")
	mode := flag.String("mode", "balanced", "Chat mode (balanced, study, professor, socratic)")
	cohortID := flag.String("cohort", "", "Cohort id (optional)")
	conversationID := flag.Int64("conversation", 0, "Conversation ID to continue (optional)")
	filePath := flag.String("file", "", "File to attach as context for the first message (optional)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("Error: -email and -password are required")
		flag.Usage()
		os.Exit(1)
	}
	if *classID == "" {
		fmt.Println("Error: -class is required")
		flag.Usage()
		os.Exit(1)
	}

	sessionKey, err := authenticate(*server, *email, *password)
	if err != nil {
		fmt.Printf("Authentication failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Authentication successful!")

	var fileName, fileContent string
	if *filePath != "" {
		data, err := os.ReadFile(*filePath)
		if err != nil {
			fmt.Printf("Could not read file: %v\n", err)
			os.Exit(1)
		}
		fileName = filepath.Base(*filePath)
		fileContent = string(data)
	}

	wsURL := strings.Replace(*server, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL += "/api/1.0/chat"

	//one visit id for the whole CLI session
	sessionID := uuid.NewString()

	reader := bufio.NewReader(os.Stdin)
	currentConvID := *conversationID

	for {
		fmt.Print("\nYou: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.ToLower(input) == "exit" || strings.ToLower(input) == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		url := wsURL
		if currentConvID != 0 {
			url += "?conversation_id=" + strconv.FormatInt(currentConvID, 10)
		}

		header := http.Header{}
		header.Set("X-Session-Key", sessionKey)

		conn, _, err := websocket.DefaultDialer.Dial(url, header)
		if err != nil {
			fmt.Printf("WebSocket connection failed: %v\n", err)
			continue
		}

		msg := chat.ClientMessage{
			Message:     input,
			ClassID:     *classID,
			Mode:        *mode,
			CohortID:    *cohortID,
			SessionID:   sessionID,
			FileName:    fileName,
			FileContent: fileContent,
		}
		//the file rides on the first message only
		fileName, fileContent = "", ""

		if err := conn.WriteJSON(&msg); err != nil {
			fmt.Printf("Failed to send message: %v\n", err)
			conn.Close()
			continue
		}

		currentConvID = readTurn(conn, currentConvID)
		conn.Close()
	}
}

//readTurn prints server frames until a terminal frame and returns the
//conversation id to continue with
func readTurn(conn *websocket.Conn, currentConvID int64) int64 {
	fmt.Print("Assistant: ")

	//each text frame replaces the previous content, so only print the suffix
	printed := 0

	for {
		var msg chat.ServerMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				fmt.Printf("\nError reading response: %v\n", err)
			}
			return currentConvID
		}

		switch msg.Type {
		case chat.MessageTypeText:
			if len(msg.Content) > printed {
				fmt.Print(msg.Content[printed:])
				printed = len(msg.Content)
			}
		case chat.MessageTypeSources:
			fmt.Println("\n\nSources:")
			for _, s := range msg.Sources {
				if s.Metadata == nil {
					continue
				}
				fmt.Printf("  - %s", s.Metadata.Title)
				if s.Metadata.Section != "" {
					fmt.Printf(" (%s)", s.Metadata.Section)
				}
				fmt.Println()
			}
			fmt.Print("\n")
		case chat.MessageTypeDone:
			fmt.Println()
			if msg.Warning != "" {
				fmt.Printf("Warning: %s\n", msg.Warning)
			}
			currentConvID = msg.ConversationID
			fmt.Printf("(Conversation ID: %d)\n", currentConvID)
			return currentConvID
		case chat.MessageTypeError:
			fmt.Printf("\nError: %s\n", msg.Error)
			return currentConvID
		}
	}
}

func authenticate(serverURL, email, password string) (string, error) {
	body, err := json.Marshal(&authRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := http.Post(serverURL+"/api/1.0/auth", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authentication failed with status %d", resp.StatusCode)
	}

	var authResp authResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return authResp.SessionKey, nil
}
