package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/service"
	"github.com/zivox/zivox/internal/store"
)

// CommandHandler handles CLI commands
type CommandHandler struct {
	chatStore  *store.ChatStore
	userSvc    *service.UserService
	statusSvc  *service.StatusService
	callSvc    *service.CallService
	sessionUID string
}

// NewCommandHandler creates a new command handler. sessionUID may be empty;
// /login sets it.
func NewCommandHandler(
	chatStore *store.ChatStore,
	userSvc *service.UserService,
	statusSvc *service.StatusService,
	callSvc *service.CallService,
	sessionUID string,
) *CommandHandler {
	return &CommandHandler{
		chatStore:  chatStore,
		userSvc:    userSvc,
		statusSvc:  statusSvc,
		callSvc:    callSvc,
		sessionUID: sessionUID,
	}
}

// Command represents a parsed command
type Command struct {
	Name string
	Args []string
}

// ParseCommand parses a command string (e.g., "/send chat-1 Hello there")
func ParseCommand(input string) (*Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty command")
	}

	if !strings.HasPrefix(input, "/") {
		return nil, fmt.Errorf("commands must start with /")
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	name := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]

	return &Command{Name: name, Args: args}, nil
}

// Execute executes a command and returns the result
func (h *CommandHandler) Execute(ctx context.Context, cmd *Command) (interface{}, error) {
	switch cmd.Name {
	case "help", "h":
		return h.cmdHelp()
	case "login":
		return h.cmdLogin(ctx, cmd.Args)
	case "logout":
		return h.cmdLogout(ctx)
	case "whoami":
		return h.cmdWhoami(ctx)
	case "chats", "ls":
		return h.cmdChats(ctx)
	case "messages", "msg":
		return h.cmdMessages(ctx, cmd.Args)
	case "send":
		return h.cmdSend(ctx, cmd.Args)
	case "sendfile":
		return h.cmdSendFile(ctx, cmd.Args)
	case "start":
		return h.cmdStart(ctx, cmd.Args)
	case "group":
		return h.cmdGroup(ctx, cmd.Args)
	case "react":
		return h.cmdReact(ctx, cmd.Args)
	case "edit":
		return h.cmdEdit(ctx, cmd.Args)
	case "delete", "del":
		return h.cmdDelete(ctx, cmd.Args)
	case "seen":
		return h.cmdSeen(ctx, cmd.Args)
	case "mute":
		return h.cmdMute(ctx, cmd.Args, true)
	case "unmute":
		return h.cmdMute(ctx, cmd.Args, false)
	case "pin":
		return h.cmdPin(ctx, cmd.Args, true)
	case "unpin":
		return h.cmdPin(ctx, cmd.Args, false)
	case "clear":
		return h.cmdClear(ctx, cmd.Args)
	case "search":
		return h.cmdSearch(ctx, cmd.Args)
	case "typing":
		return h.cmdTyping(ctx, cmd.Args)
	case "status-post", "post":
		return h.cmdStatusPost(ctx, cmd.Args)
	case "statuses", "st":
		return h.cmdStatuses(ctx)
	case "status-view":
		return h.cmdStatusView(ctx, cmd.Args)
	case "calls":
		return h.cmdCalls(ctx)
	case "call-log":
		return h.cmdCallLog(ctx, cmd.Args)
	case "call-delete":
		return h.cmdCallDelete(ctx, cmd.Args)
	case "user":
		return h.cmdUser(ctx, cmd.Args)
	case "users":
		return h.cmdUsers(ctx, cmd.Args)
	case "profile":
		return h.cmdProfile(ctx, cmd.Args)
	case "settings":
		return h.cmdSettings(ctx, cmd.Args)
	case "quit", "exit", "q":
		return map[string]bool{"quit": true}, nil
	default:
		return nil, fmt.Errorf("unknown command: %s. Type /help for available commands", cmd.Name)
	}
}

func (h *CommandHandler) cmdHelp() (interface{}, error) {
	help := `Available commands:

Session:
  /login <uid> [name] [email]   Sign in (creates the user if missing)
  /logout                       Sign out
  /whoami                       Show the signed-in user

Chats:
  /chats, /ls                   List the session user's chats
  /messages, /msg <chat_id> [limit]  Get recent messages, oldest first
  /send <chat_id> <text>        Send a text message
  /sendfile <chat_id> <image|video|audio> <path>  Send a media message
  /start <other_uid>            Find or create a private chat, print its id
  /group <uid> [uid...]         Create a group chat with the given members
  /react <chat_id> <msg_id> <emoji>  React to a message
  /edit <chat_id> <msg_id> <text>    Edit a message
  /delete, /del <chat_id> <msg_id>   Delete a message for everyone
  /seen <chat_id> <msg_id> [msg_id2...]  Mark messages seen
  /mute <chat_id>, /unmute <chat_id>
  /pin <chat_id>, /unpin <chat_id>
  /clear <chat_id>              Delete every message in a chat
  /search <query> [limit]       Search messages across chats
  /typing <chat_id> <on|off>    Publish a typing signal

Statuses:
  /status-post, /post <text>    Post a status update (visible 24h)
  /statuses, /st                List active statuses grouped by owner
  /status-view <status_id>      Mark a status viewed

Calls:
  /calls                        List call history
  /call-log <receiver_uid> <voice|video> <outgoing|incoming|missed> [seconds]
  /call-delete <call_id>        Remove a call-history entry

Users:
  /user <uid>                   Show a user's profile
  /users <query>                Search users by name or email
  /profile <name> [bio...]      Update the session user's profile
  /settings <everyone|contacts|nobody> <on|off>  Last-seen visibility, online toggle

Other:
  /help, /h                     Show this help
  /quit, /exit, /q              Exit the CLI`

	return map[string]string{"help": help}, nil
}

func (h *CommandHandler) requireSession() error {
	if h.sessionUID == "" {
		return fmt.Errorf("not signed in. Use /login <uid> first")
	}
	return nil
}

func (h *CommandHandler) cmdLogin(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /login <uid> [name] [email]")
	}

	uid := args[0]
	name := ""
	email := ""
	if len(args) > 1 {
		name = args[1]
	}
	if len(args) > 2 {
		email = args[2]
	}

	user, err := h.userSvc.SignIn(ctx, uid, name, email)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}

	h.sessionUID = user.UID

	if err := h.chatStore.SubscribeChats(ctx, user.UID); err != nil {
		return nil, fmt.Errorf("failed to subscribe to chats: %w", err)
	}

	return SessionInfo{UID: user.UID, Name: user.DisplayName(), SignedIn: true}, nil
}

func (h *CommandHandler) cmdLogout(ctx context.Context) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}

	if err := h.userSvc.SignOut(ctx, h.sessionUID); err != nil {
		return nil, fmt.Errorf("failed to sign out: %w", err)
	}

	h.chatStore.Cleanup()
	h.sessionUID = ""

	return map[string]string{"message": "Signed out"}, nil
}

func (h *CommandHandler) cmdWhoami(ctx context.Context) (interface{}, error) {
	if h.sessionUID == "" {
		return SessionInfo{SignedIn: false}, nil
	}

	user, err := h.userSvc.Get(ctx, h.sessionUID)
	if err != nil {
		return SessionInfo{UID: h.sessionUID, SignedIn: true}, nil
	}

	return SessionInfo{UID: user.UID, Name: user.DisplayName(), SignedIn: true}, nil
}

func (h *CommandHandler) cmdChats(ctx context.Context) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}

	chats, err := h.chatStore.GetChats(ctx, h.sessionUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chats: %w", err)
	}

	result := make([]ChatInfo, len(chats))
	for i, chat := range chats {
		result[i] = chatToInfo(chat, h.sessionUID)
	}

	return map[string]interface{}{"chats": result, "count": len(result)}, nil
}

func (h *CommandHandler) cmdMessages(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /messages <chat_id> [limit]")
	}

	chatID := args[0]
	limit := store.PageSize
	if len(args) > 1 {
		if l, err := strconv.Atoi(args[1]); err == nil && l > 0 {
			limit = l
		}
	}

	messages, err := h.chatStore.GetMessages(ctx, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	result := make([]MessageInfo, len(messages))
	for i, msg := range messages {
		result[i] = messageToInfo(msg)
	}

	return map[string]interface{}{"messages": result, "count": len(result)}, nil
}

func (h *CommandHandler) cmdSend(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: /send <chat_id> <text>")
	}

	chatID := args[0]
	text := strings.Join(args[1:], " ")

	msg, err := h.chatStore.SendMessage(ctx, chatID, h.sessionUID, text)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	return messageToInfo(msg), nil
}

func (h *CommandHandler) cmdSendFile(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 3 {
		return nil, fmt.Errorf("usage: /sendfile <chat_id> <image|video|audio> <path>")
	}

	chatID := args[0]
	kind := domain.MediaType(args[1])
	switch kind {
	case domain.MediaTypeImage, domain.MediaTypeVideo, domain.MediaTypeAudio:
	default:
		return nil, fmt.Errorf("media kind must be image, video or audio")
	}

	data, err := os.ReadFile(args[2])
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	msg, err := h.chatStore.SendMediaMessage(ctx, chatID, h.sessionUID, data, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to send media: %w", err)
	}

	return messageToInfo(msg), nil
}

func (h *CommandHandler) cmdStart(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /start <other_uid>")
	}
	if args[0] == h.sessionUID {
		return nil, fmt.Errorf("cannot start a chat with yourself")
	}

	chatID, err := h.chatStore.StartChat(ctx, h.sessionUID, args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to start chat: %w", err)
	}

	return map[string]string{"chat_id": chatID}, nil
}

func (h *CommandHandler) cmdGroup(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /group <uid> [uid...]")
	}

	chatID, err := h.chatStore.StartGroupChat(ctx, h.sessionUID, args)
	if err != nil {
		return nil, fmt.Errorf("failed to create group chat: %w", err)
	}

	return map[string]string{"chat_id": chatID}, nil
}

func (h *CommandHandler) cmdReact(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 3 {
		return nil, fmt.Errorf("usage: /react <chat_id> <message_id> <emoji>")
	}

	if err := h.chatStore.AddReaction(ctx, args[0], args[1], h.sessionUID, args[2]); err != nil {
		return nil, fmt.Errorf("failed to react: %w", err)
	}

	return map[string]string{
		"message":    "Reaction set",
		"message_id": args[1],
		"emoji":      args[2],
	}, nil
}

func (h *CommandHandler) cmdEdit(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("usage: /edit <chat_id> <message_id> <text>")
	}

	text := strings.Join(args[2:], " ")
	if err := h.chatStore.EditMessage(ctx, args[0], args[1], text); err != nil {
		return nil, fmt.Errorf("failed to edit message: %w", err)
	}

	return map[string]string{"message": "Message edited", "message_id": args[1]}, nil
}

func (h *CommandHandler) cmdDelete(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: /delete <chat_id> <message_id>")
	}

	if err := h.chatStore.DeleteMessage(ctx, args[0], args[1], true); err != nil {
		return nil, fmt.Errorf("failed to delete message: %w", err)
	}

	return map[string]string{"message": "Message deleted for everyone", "message_id": args[1]}, nil
}

func (h *CommandHandler) cmdSeen(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, fmt.Errorf("usage: /seen <chat_id> <message_id> [message_id2...]")
	}

	h.chatStore.MarkSeen(ctx, args[0], args[1:], h.sessionUID)

	return map[string]interface{}{
		"message":     "Messages marked seen",
		"message_ids": args[1:],
	}, nil
}

func (h *CommandHandler) cmdMute(ctx context.Context, args []string, mute bool) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /mute <chat_id>")
	}

	h.chatStore.MuteChat(ctx, args[0], h.sessionUID, mute)

	verb := "muted"
	if !mute {
		verb = "unmuted"
	}
	return map[string]string{"message": "Chat " + verb, "chat_id": args[0]}, nil
}

func (h *CommandHandler) cmdPin(ctx context.Context, args []string, pin bool) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /pin <chat_id>")
	}

	h.chatStore.PinChat(ctx, args[0], h.sessionUID, pin)

	verb := "pinned"
	if !pin {
		verb = "unpinned"
	}
	return map[string]string{"message": "Chat " + verb, "chat_id": args[0]}, nil
}

func (h *CommandHandler) cmdClear(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /clear <chat_id>")
	}

	if err := h.chatStore.ClearChat(ctx, args[0]); err != nil {
		return nil, fmt.Errorf("failed to clear chat: %w", err)
	}

	return map[string]string{"message": "Chat cleared", "chat_id": args[0]}, nil
}

func (h *CommandHandler) cmdSearch(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /search <query> [limit]")
	}

	query := args[0]
	limit := 20

	// Check if last arg is a number (limit)
	if len(args) > 1 {
		if l, err := strconv.Atoi(args[len(args)-1]); err == nil && l > 0 {
			limit = l
			query = strings.Join(args[:len(args)-1], " ")
		} else {
			query = strings.Join(args, " ")
		}
	}

	messages, err := h.chatStore.SearchMessages(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	result := make([]MessageInfo, len(messages))
	for i, msg := range messages {
		result[i] = messageToInfo(msg)
	}

	return map[string]interface{}{
		"query":    query,
		"messages": result,
		"count":    len(result),
	}, nil
}

func (h *CommandHandler) cmdTyping(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
		return nil, fmt.Errorf("usage: /typing <chat_id> <on|off>")
	}

	h.chatStore.SetTyping(ctx, args[0], h.sessionUID, args[1] == "on")

	return map[string]string{"message": "Typing " + args[1], "chat_id": args[0]}, nil
}

func (h *CommandHandler) cmdStatusPost(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /status-post <text>")
	}

	draft := service.StatusDraft{Text: strings.Join(args, " ")}
	status, err := h.statusSvc.Post(ctx, h.sessionUID, draft)
	if err != nil {
		return nil, fmt.Errorf("failed to post status: %w", err)
	}

	return statusToInfo(status), nil
}

func (h *CommandHandler) cmdStatuses(ctx context.Context) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}

	mine, others, err := h.statusSvc.ActiveGrouped(ctx, h.sessionUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list statuses: %w", err)
	}

	mineInfo := make([]StatusInfo, len(mine))
	for i, st := range mine {
		mineInfo[i] = statusToInfo(st)
	}

	groups := make([]map[string]interface{}, len(others))
	for i, g := range others {
		statuses := make([]StatusInfo, len(g.Statuses))
		for j, st := range g.Statuses {
			statuses[j] = statusToInfo(st)
		}
		groups[i] = map[string]interface{}{
			"uid":      g.UID,
			"name":     g.UserName,
			"statuses": statuses,
		}
	}

	return map[string]interface{}{"mine": mineInfo, "others": groups}, nil
}

func (h *CommandHandler) cmdStatusView(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /status-view <status_id>")
	}

	if err := h.statusSvc.MarkViewed(ctx, args[0], h.sessionUID); err != nil {
		return nil, fmt.Errorf("failed to mark status viewed: %w", err)
	}

	return map[string]string{"message": "Status marked viewed", "status_id": args[0]}, nil
}

func (h *CommandHandler) cmdCalls(ctx context.Context) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}

	calls, err := h.callSvc.History(ctx, h.sessionUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get call history: %w", err)
	}

	result := make([]CallInfo, len(calls))
	for i, call := range calls {
		result[i] = CallInfo{
			ID:           call.ID,
			CallerName:   call.CallerName,
			ReceiverName: call.ReceiverName,
			Type:         string(call.Type),
			Status:       string(call.Status),
			Duration:     call.Duration,
			CreatedAt:    call.CreatedAt,
		}
	}

	return map[string]interface{}{"calls": result, "count": len(result)}, nil
}

func (h *CommandHandler) cmdCallLog(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 3 {
		return nil, fmt.Errorf("usage: /call-log <receiver_uid> <voice|video> <outgoing|incoming|missed> [seconds]")
	}

	callType := domain.CallType(args[1])
	switch callType {
	case domain.CallTypeVoice, domain.CallTypeVideo:
	default:
		return nil, fmt.Errorf("call type must be voice or video")
	}

	callStatus := domain.CallStatus(args[2])
	switch callStatus {
	case domain.CallStatusOutgoing, domain.CallStatusIncoming, domain.CallStatusMissed:
	default:
		return nil, fmt.Errorf("call status must be outgoing, incoming or missed")
	}

	duration := 0
	if len(args) > 3 {
		if d, err := strconv.Atoi(args[3]); err == nil && d >= 0 {
			duration = d
		}
	}

	call, err := h.callSvc.Record(ctx, h.sessionUID, args[0], callType, callStatus, duration)
	if err != nil {
		return nil, fmt.Errorf("failed to log call: %w", err)
	}

	return map[string]string{"message": "Call logged", "call_id": call.ID}, nil
}

func (h *CommandHandler) cmdCallDelete(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /call-delete <call_id>")
	}

	if err := h.callSvc.Delete(ctx, args[0]); err != nil {
		return nil, fmt.Errorf("failed to delete call: %w", err)
	}

	return map[string]string{"message": "Call deleted", "call_id": args[0]}, nil
}

func (h *CommandHandler) cmdUser(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /user <uid>")
	}

	user, err := h.userSvc.Get(ctx, args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return userToInfo(user), nil
}

func (h *CommandHandler) cmdUsers(ctx context.Context, args []string) (interface{}, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /users <query>")
	}

	users, err := h.userSvc.Search(ctx, strings.Join(args, " "), 20)
	if err != nil {
		return nil, fmt.Errorf("user search failed: %w", err)
	}

	result := make([]UserInfo, len(users))
	for i, u := range users {
		result[i] = userToInfo(u)
	}

	return map[string]interface{}{"users": result, "count": len(result)}, nil
}

func (h *CommandHandler) cmdProfile(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: /profile <name> [bio...]")
	}

	bio := ""
	if len(args) > 1 {
		bio = strings.Join(args[1:], " ")
	}

	user, err := h.userSvc.UpdateProfile(ctx, h.sessionUID, args[0], bio, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return userToInfo(user), nil
}

func (h *CommandHandler) cmdSettings(ctx context.Context, args []string) (interface{}, error) {
	if err := h.requireSession(); err != nil {
		return nil, err
	}
	if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
		return nil, fmt.Errorf("usage: /settings <everyone|contacts|nobody> <on|off>")
	}

	visibility := domain.LastSeenVisibility(args[0])
	if err := h.userSvc.UpdateSettings(ctx, h.sessionUID, visibility, args[1] == "on"); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}

	return map[string]string{"message": "Settings updated"}, nil
}

// SubscribeEvents subscribes to live data events for streaming modes
func (h *CommandHandler) SubscribeEvents(eventTypes []domain.EventType) <-chan Event {
	if len(eventTypes) == 0 {
		eventTypes = []domain.EventType{
			domain.EventTypeMessageAppended,
			domain.EventTypeChatUpdated,
			domain.EventTypeTypingChanged,
		}
	}

	eventBus := h.chatStore.EventBus()
	domainChan := eventBus.Subscribe(eventTypes)

	resultChan := make(chan Event)

	go func() {
		defer close(resultChan)
		for evt := range domainChan {
			var eventType string
			var data interface{}

			switch e := evt.(type) {
			case domain.MessageAppendedEvent:
				eventType = "message_appended"
				data = messageToInfo(e.Message)
			case domain.MessageUpdatedEvent:
				eventType = "message_updated"
				data = map[string]string{"chat_id": e.ChatID, "message_id": e.MessageID}
			case domain.ChatUpdatedEvent:
				eventType = "chat_updated"
				data = map[string]string{"chat_id": e.ChatID}
			case domain.ChatClearedEvent:
				eventType = "chat_cleared"
				data = map[string]string{"chat_id": e.ChatID}
			case domain.TypingChangedEvent:
				eventType = "typing_changed"
				data = map[string]interface{}{
					"chat_id":   e.ChatID,
					"uid":       e.UID,
					"is_typing": e.IsTyping,
				}
			case domain.StatusPostedEvent:
				eventType = "status_posted"
				data = statusToInfo(e.Status)
			case domain.CallLoggedEvent:
				eventType = "call_logged"
				data = map[string]string{"call_id": e.Call.ID}
			default:
				continue
			}

			resultChan <- Event{
				Type:      eventType,
				Timestamp: evt.Timestamp(),
				Data:      data,
			}
		}
	}()

	return resultChan
}

func chatToInfo(chat *domain.Chat, viewerUID string) ChatInfo {
	name := "Group chat"
	if chat.Type == domain.ChatTypePrivate {
		name = chat.OtherUser.DisplayName()
	}
	return ChatInfo{
		ID:              chat.ID,
		Name:            name,
		Type:            string(chat.Type),
		Members:         chat.Members,
		Muted:           chat.IsMutedBy(viewerUID),
		Pinned:          chat.IsPinnedBy(viewerUID),
		LastMessage:     chat.LastMessage,
		LastMessageTime: chat.LastMessageTime,
	}
}

func messageToInfo(msg *domain.Message) MessageInfo {
	return MessageInfo{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  msg.SenderID,
		Text:      msg.Text,
		MediaType: string(msg.MediaType),
		ReplyTo:   msg.ReplyTo,
		Edited:    msg.Edited,
		Deleted:   msg.DeletedForEveryone,
		Reactions: msg.Reactions,
		SeenBy:    msg.SeenBy,
		Timestamp: msg.Timestamp,
	}
}

func statusToInfo(st *domain.Status) StatusInfo {
	return StatusInfo{
		ID:        st.ID,
		UID:       st.UID,
		UserName:  st.UserName,
		Text:      st.Text,
		HasImage:  st.ImageURL != "",
		ViewCount: len(st.ViewedBy),
		CreatedAt: st.CreatedAt,
	}
}

func userToInfo(u *domain.User) UserInfo {
	return UserInfo{
		UID:      u.UID,
		Name:     u.DisplayName(),
		Email:    u.Email,
		Bio:      u.Bio,
		Online:   u.OnlineStatus,
		LastSeen: u.LastSeen,
	}
}
