package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/zivox/zivox/internal/domain"
)

// HeadlessCLI handles JSON-based headless operation
type HeadlessCLI struct {
	handler *CommandHandler
	reader  *bufio.Reader
	writer  io.Writer
	mu      sync.Mutex
}

// NewHeadlessCLI creates a new headless CLI
func NewHeadlessCLI(handler *CommandHandler) *HeadlessCLI {
	return &HeadlessCLI{
		handler: handler,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
	}
}

// Run starts the headless JSON processing loop
func (cli *HeadlessCLI) Run(ctx context.Context) error {
	// Send ready message
	cli.sendResponse(Response{
		Success: true,
		Data:    map[string]string{"status": "ready", "mode": "headless"},
	})

	// Subscribe to events in background
	eventChan := cli.handler.SubscribeEvents([]domain.EventType{
		domain.EventTypeMessageAppended,
		domain.EventTypeMessageUpdated,
		domain.EventTypeChatUpdated,
		domain.EventTypeChatCleared,
		domain.EventTypeTypingChanged,
		domain.EventTypeStatusPosted,
		domain.EventTypeCallLogged,
	})

	go cli.streamEvents(eventChan)

	// Process incoming JSON requests
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			line, err := cli.reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil
				}
				cli.sendError("", fmt.Sprintf("read error: %v", err))
				continue
			}

			cli.processRequest(ctx, line)
		}
	}
}

func (cli *HeadlessCLI) processRequest(ctx context.Context, line string) {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		cli.sendError("", fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	if req.Command == "" {
		cli.sendError(req.ID, "missing command field")
		return
	}

	// Convert params to args for command handler
	args := cli.paramsToArgs(req.Command, req.Params)

	cmd := &Command{
		Name: req.Command,
		Args: args,
	}

	switch req.Command {
	case "subscribe":
		// Already subscribed, just acknowledge
		cli.sendResponse(Response{
			ID:      req.ID,
			Success: true,
			Data:    map[string]string{"message": "subscribed to events"},
		})
		return
	case "quit", "exit":
		cli.sendResponse(Response{
			ID:      req.ID,
			Success: true,
			Data:    map[string]string{"message": "goodbye"},
		})
		os.Exit(0)
		return
	}

	result, err := cli.handler.Execute(ctx, cmd)
	if err != nil {
		cli.sendError(req.ID, err.Error())
		return
	}

	cli.sendResponse(Response{
		ID:      req.ID,
		Success: true,
		Data:    result,
	})
}

func (cli *HeadlessCLI) paramsToArgs(command string, params map[string]interface{}) []string {
	if params == nil {
		return nil
	}

	str := func(key string) (string, bool) {
		s, ok := params[key].(string)
		return s, ok
	}

	var args []string

	switch command {
	case "login":
		if uid, ok := str("uid"); ok {
			args = append(args, uid)
		}
		if name, ok := str("name"); ok {
			args = append(args, name)
		}
		if email, ok := str("email"); ok {
			args = append(args, email)
		}

	case "messages", "msg":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if limit, ok := params["limit"].(float64); ok {
			args = append(args, fmt.Sprintf("%d", int(limit)))
		}

	case "send":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if text, ok := str("text"); ok {
			args = append(args, text)
		}

	case "sendfile":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if kind, ok := str("kind"); ok {
			args = append(args, kind)
		}
		if path, ok := str("path"); ok {
			args = append(args, path)
		}

	case "start":
		if otherUID, ok := str("other_uid"); ok {
			args = append(args, otherUID)
		}

	case "group":
		if uids, ok := params["member_uids"].([]interface{}); ok {
			for _, id := range uids {
				if s, ok := id.(string); ok {
					args = append(args, s)
				}
			}
		}

	case "react":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if msgID, ok := str("message_id"); ok {
			args = append(args, msgID)
		}
		if emoji, ok := str("emoji"); ok {
			args = append(args, emoji)
		}

	case "edit":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if msgID, ok := str("message_id"); ok {
			args = append(args, msgID)
		}
		if text, ok := str("text"); ok {
			args = append(args, text)
		}

	case "delete", "del":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if msgID, ok := str("message_id"); ok {
			args = append(args, msgID)
		}

	case "seen":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if msgIDs, ok := params["message_ids"].([]interface{}); ok {
			for _, id := range msgIDs {
				if s, ok := id.(string); ok {
					args = append(args, s)
				}
			}
		}

	case "mute", "unmute", "pin", "unpin", "clear":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}

	case "typing":
		if chatID, ok := str("chat_id"); ok {
			args = append(args, chatID)
		}
		if state, ok := str("state"); ok {
			args = append(args, state)
		}

	case "search":
		if query, ok := str("query"); ok {
			args = append(args, query)
		}
		if limit, ok := params["limit"].(float64); ok {
			args = append(args, fmt.Sprintf("%d", int(limit)))
		}

	case "status-post", "post":
		if text, ok := str("text"); ok {
			args = append(args, text)
		}

	case "status-view":
		if statusID, ok := str("status_id"); ok {
			args = append(args, statusID)
		}

	case "call-log":
		if receiver, ok := str("receiver_uid"); ok {
			args = append(args, receiver)
		}
		if callType, ok := str("call_type"); ok {
			args = append(args, callType)
		}
		if status, ok := str("status"); ok {
			args = append(args, status)
		}
		if duration, ok := params["duration"].(float64); ok {
			args = append(args, fmt.Sprintf("%d", int(duration)))
		}

	case "call-delete":
		if callID, ok := str("call_id"); ok {
			args = append(args, callID)
		}

	case "user":
		if uid, ok := str("uid"); ok {
			args = append(args, uid)
		}

	case "users":
		if query, ok := str("query"); ok {
			args = append(args, query)
		}

	case "profile":
		if name, ok := str("name"); ok {
			args = append(args, name)
		}
		if bio, ok := str("bio"); ok {
			args = append(args, bio)
		}

	case "settings":
		if visibility, ok := str("last_seen_visibility"); ok {
			args = append(args, visibility)
		}
		if online, ok := str("online_visible"); ok {
			args = append(args, online)
		}
	}

	return args
}

func (cli *HeadlessCLI) streamEvents(eventChan <-chan Event) {
	for event := range eventChan {
		cli.sendEvent(event)
	}
}

func (cli *HeadlessCLI) sendResponse(resp Response) {
	cli.mu.Lock()
	defer cli.mu.Unlock()

	data, _ := json.Marshal(resp)
	fmt.Fprintln(cli.writer, string(data))
}

func (cli *HeadlessCLI) sendError(id, message string) {
	cli.sendResponse(Response{
		ID:      id,
		Success: false,
		Error:   message,
	})
}

func (cli *HeadlessCLI) sendEvent(event Event) {
	cli.mu.Lock()
	defer cli.mu.Unlock()

	data, _ := json.Marshal(map[string]interface{}{
		"type":      "event",
		"event":     event.Type,
		"timestamp": event.Timestamp,
		"data":      event.Data,
	})
	fmt.Fprintln(cli.writer, string(data))
}
