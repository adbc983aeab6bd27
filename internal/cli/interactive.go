package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zivox/zivox/internal/domain"
)

// InteractiveCLI handles interactive command-line interface
type InteractiveCLI struct {
	handler *CommandHandler
	reader  *bufio.Reader
	writer  io.Writer
}

// NewInteractiveCLI creates a new interactive CLI
func NewInteractiveCLI(handler *CommandHandler) *InteractiveCLI {
	return &InteractiveCLI{
		handler: handler,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}
}

// Run starts the interactive CLI loop
func (cli *InteractiveCLI) Run(ctx context.Context) error {
	cli.printWelcome()

	// Subscribe to events in background
	eventChan := cli.handler.SubscribeEvents([]domain.EventType{
		domain.EventTypeMessageAppended,
		domain.EventTypeTypingChanged,
	})

	go cli.handleEvents(eventChan)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			cli.print("\n> ")
			line, err := cli.reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if err := cli.processCommand(ctx, line); err != nil {
				if err.Error() == "quit" {
					cli.println("Goodbye!")
					return nil
				}
				cli.printf("Error: %s\n", err)
			}
		}
	}
}

func (cli *InteractiveCLI) printWelcome() {
	cli.println("===========================================")
	cli.println("  ZIVOX CLI")
	cli.println("===========================================")
	cli.println("Type /help for available commands")
	cli.println("")

	if cli.handler.sessionUID != "" {
		cli.printf("Session: %s\n", cli.handler.sessionUID)
	} else {
		cli.println("Not signed in. Use /login <uid> to begin.")
	}
}

func (cli *InteractiveCLI) processCommand(ctx context.Context, input string) error {
	cmd, err := ParseCommand(input)
	if err != nil {
		return err
	}

	result, err := cli.handler.Execute(ctx, cmd)
	if err != nil {
		return err
	}

	// Check for quit command
	if m, ok := result.(map[string]bool); ok && m["quit"] {
		return fmt.Errorf("quit")
	}

	// Format and display result
	cli.displayResult(cmd.Name, result)
	return nil
}

func (cli *InteractiveCLI) displayResult(cmdName string, result interface{}) {
	switch cmdName {
	case "help", "h":
		if m, ok := result.(map[string]string); ok {
			cli.println(m["help"])
		}

	case "login":
		if s, ok := result.(SessionInfo); ok {
			cli.printf("Signed in as %s (%s)\n", s.Name, s.UID)
		}

	case "whoami":
		if s, ok := result.(SessionInfo); ok {
			if !s.SignedIn {
				cli.println("Not signed in")
			} else {
				cli.printf("%s (%s)\n", s.Name, s.UID)
			}
		}

	case "chats", "ls":
		if m, ok := result.(map[string]interface{}); ok {
			chats, _ := m["chats"].([]ChatInfo)
			cli.printf("Found %d chat(s):\n\n", len(chats))
			for i, chat := range chats {
				flags := ""
				if chat.Pinned {
					flags += " [pinned]"
				}
				if chat.Muted {
					flags += " [muted]"
				}
				cli.printf("%d. %s (%s)%s\n", i+1, chat.Name, chat.Type, flags)
				cli.printf("   ID: %s\n", chat.ID)
				if chat.LastMessage != "" {
					preview := chat.LastMessage
					if len(preview) > 50 {
						preview = preview[:50] + "..."
					}
					cli.printf("   Last: %s\n", preview)
				}
			}
		}

	case "messages", "msg":
		if m, ok := result.(map[string]interface{}); ok {
			messages, _ := m["messages"].([]MessageInfo)
			cli.printf("Found %d message(s):\n\n", len(messages))
			for _, msg := range messages {
				cli.printMessage(msg)
			}
		}

	case "send", "sendfile":
		if msg, ok := result.(MessageInfo); ok {
			cli.printf("Message sent!\n")
			cli.printf("  ID: %s\n", msg.ID)
			cli.printf("  Time: %s\n", msg.Timestamp.Format("2006-01-02 15:04:05"))
		}

	case "search":
		if m, ok := result.(map[string]interface{}); ok {
			query, _ := m["query"].(string)
			messages, _ := m["messages"].([]MessageInfo)
			cli.printf("Search results for '%s' (%d found):\n\n", query, len(messages))
			for i, msg := range messages {
				text := msg.Text
				if len(text) > 80 {
					text = text[:80] + "..."
				}
				cli.printf("%d. [%s] %s:\n", i+1, msg.Timestamp.Format("2006-01-02 15:04"), msg.SenderID)
				cli.printf("   %s\n", text)
				cli.printf("   Chat: %s | ID: %s\n\n", msg.ChatID, msg.ID)
			}
		}

	case "statuses", "st":
		if m, ok := result.(map[string]interface{}); ok {
			mine, _ := m["mine"].([]StatusInfo)
			if len(mine) > 0 {
				cli.printf("My status (%d update(s)):\n", len(mine))
				for _, st := range mine {
					cli.printStatus(st)
				}
				cli.println("")
			}
			groups, _ := m["others"].([]map[string]interface{})
			for _, g := range groups {
				name, _ := g["name"].(string)
				statuses, _ := g["statuses"].([]StatusInfo)
				cli.printf("%s (%d update(s)):\n", name, len(statuses))
				for _, st := range statuses {
					cli.printStatus(st)
				}
				cli.println("")
			}
		}

	case "calls":
		if m, ok := result.(map[string]interface{}); ok {
			calls, _ := m["calls"].([]CallInfo)
			cli.printf("Found %d call(s):\n\n", len(calls))
			for i, call := range calls {
				cli.printf("%d. %s call: %s -> %s (%s)\n", i+1, call.Type, call.CallerName, call.ReceiverName, call.Status)
				cli.printf("   Time: %s | ID: %s\n", call.CreatedAt.Format("2006-01-02 15:04"), call.ID)
			}
		}

	case "user":
		if u, ok := result.(UserInfo); ok {
			cli.printf("%s (%s)\n", u.Name, u.UID)
			if u.Email != "" {
				cli.printf("  Email: %s\n", u.Email)
			}
			if u.Bio != "" {
				cli.printf("  Bio: %s\n", u.Bio)
			}
			if u.Online {
				cli.println("  Online now")
			} else if !u.LastSeen.IsZero() {
				cli.printf("  Last seen: %s\n", u.LastSeen.Format("2006-01-02 15:04"))
			}
		}

	default:
		// Generic JSON output for other commands
		if m, ok := result.(map[string]string); ok {
			if msg, exists := m["message"]; exists {
				cli.println(msg)
				return
			}
		}
		// Pretty print JSON
		data, _ := json.MarshalIndent(result, "", "  ")
		cli.println(string(data))
	}
}

func (cli *InteractiveCLI) printMessage(msg MessageInfo) {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04")
	cli.printf("[%s] %s:\n", timestamp, msg.SenderID)
	switch {
	case msg.Deleted:
		cli.println("  (deleted)")
	case msg.MediaType != "":
		if msg.Text != "" {
			cli.printf("  [%s] %s\n", msg.MediaType, msg.Text)
		} else {
			cli.printf("  [%s]\n", msg.MediaType)
		}
	default:
		cli.printf("  %s\n", msg.Text)
	}
	if msg.Edited {
		cli.println("  (edited)")
	}
	cli.printf("  ID: %s\n\n", msg.ID)
}

func (cli *InteractiveCLI) printStatus(st StatusInfo) {
	marker := ""
	if st.HasImage {
		marker = "[Photo] "
	}
	cli.printf("  [%s] %s%s (seen by %d) | ID: %s\n",
		st.CreatedAt.Format("2006-01-02 15:04"), marker, st.Text, st.ViewCount, st.ID)
}

func (cli *InteractiveCLI) handleEvents(eventChan <-chan Event) {
	for event := range eventChan {
		switch event.Type {
		case "message_appended":
			if msg, ok := event.Data.(MessageInfo); ok {
				cli.printf("\n[New Message] From %s in %s:\n", msg.SenderID, msg.ChatID)
				if msg.Text != "" {
					cli.printf("  %s\n", msg.Text)
				} else if msg.MediaType != "" {
					cli.printf("  [%s]\n", msg.MediaType)
				}
				cli.print("> ")
			}
		case "typing_changed":
			if data, ok := event.Data.(map[string]interface{}); ok {
				isTyping, _ := data["is_typing"].(bool)
				if isTyping {
					uid, _ := data["uid"].(string)
					chatID, _ := data["chat_id"].(string)
					cli.printf("\n[%s is typing in %s]\n> ", uid, chatID)
				}
			}
		}
	}
}

func (cli *InteractiveCLI) print(s string) {
	fmt.Fprint(cli.writer, s)
}

func (cli *InteractiveCLI) println(s string) {
	fmt.Fprintln(cli.writer, s)
}

func (cli *InteractiveCLI) printf(format string, args ...interface{}) {
	fmt.Fprintf(cli.writer, format, args...)
}
