package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/service"
)

func (s *Server) handleListChats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := request.GetString("uid", "")
	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}

	chats, err := s.chatStore.GetChats(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get chats: %v", err)), nil
	}

	if len(chats) == 0 {
		return mcp.NewToolResultText("No chats found."), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d chat(s):\n\n", len(chats)))

	for i, chat := range chats {
		name := "Group chat"
		chatType := "Group"
		if chat.Type == domain.ChatTypePrivate {
			chatType = "Private"
			name = chat.OtherUser.DisplayName()
		}

		result.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, name, chatType))
		result.WriteString(fmt.Sprintf("   ID: %s\n", chat.ID))

		if chat.LastMessage != "" {
			preview := chat.LastMessage
			if len(preview) > 60 {
				preview = preview[:60] + "..."
			}
			result.WriteString(fmt.Sprintf("   Last: %s\n", preview))
			if !chat.LastMessageTime.IsZero() {
				result.WriteString(fmt.Sprintf("   Time: %s\n", chat.LastMessageTime.Format("2006-01-02 15:04")))
			}
		}
		if chat.IsMutedBy(uid) {
			result.WriteString("   Muted\n")
		}
		if chat.IsPinnedBy(uid) {
			result.WriteString("   Pinned\n")
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleGetMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	if chatID == "" {
		return mcp.NewToolResultError("chat_id is required"), nil
	}

	limit := request.GetInt("limit", 30)
	if limit > 200 {
		limit = 200
	}
	if limit <= 0 {
		limit = 30
	}

	messages, err := s.chatStore.GetMessages(ctx, chatID, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get messages: %v", err)), nil
	}

	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages found in chat %s", chatID)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Messages from %s (%d):\n\n", chatID, len(messages)))

	for _, msg := range messages {
		timestamp := msg.Timestamp.Format("2006-01-02 15:04")
		result.WriteString(fmt.Sprintf("[%s] %s (id %s):\n", timestamp, msg.SenderID, msg.ID))

		switch {
		case msg.DeletedForEveryone:
			result.WriteString("  (deleted)\n")
		case msg.MediaType != "":
			label := msg.MediaType.PreviewLabel()
			if msg.Text != "" {
				result.WriteString(fmt.Sprintf("  %s %s\n", label, msg.Text))
			} else {
				result.WriteString(fmt.Sprintf("  %s\n", label))
			}
		default:
			result.WriteString(fmt.Sprintf("  %s\n", msg.Text))
		}

		if msg.Edited {
			result.WriteString("  (edited)\n")
		}
		if len(msg.Reactions) > 0 {
			var parts []string
			for uid, emoji := range msg.Reactions {
				parts = append(parts, fmt.Sprintf("%s: %s", uid, emoji))
			}
			result.WriteString(fmt.Sprintf("  Reactions: %s\n", strings.Join(parts, ", ")))
		}
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	if chatID == "" {
		return mcp.NewToolResultError("chat_id is required"), nil
	}
	senderID := request.GetString("sender_id", "")
	if senderID == "" {
		return mcp.NewToolResultError("sender_id is required"), nil
	}
	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	msg, err := s.chatStore.SendMessage(ctx, chatID, senderID, text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to send message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message sent to %s (id %s)", chatID, msg.ID)), nil
}

func (s *Server) handleStartChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := request.GetString("uid", "")
	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}
	otherUID := request.GetString("other_uid", "")
	if otherUID == "" {
		return mcp.NewToolResultError("other_uid is required"), nil
	}
	if uid == otherUID {
		return mcp.NewToolResultError("uid and other_uid must differ"), nil
	}

	chatID, err := s.chatStore.StartChat(ctx, uid, otherUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to start chat: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Chat id: %s", chatID)), nil
}

func (s *Server) handleReact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	messageID := request.GetString("message_id", "")
	uid := request.GetString("uid", "")
	emoji := request.GetString("emoji", "")
	if chatID == "" || messageID == "" || uid == "" || emoji == "" {
		return mcp.NewToolResultError("chat_id, message_id, uid and emoji are required"), nil
	}

	if err := s.chatStore.AddReaction(ctx, chatID, messageID, uid, emoji); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to react: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Reacted %s to message %s", emoji, messageID)), nil
}

func (s *Server) handleEditMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	messageID := request.GetString("message_id", "")
	text := request.GetString("text", "")
	if chatID == "" || messageID == "" {
		return mcp.NewToolResultError("chat_id and message_id are required"), nil
	}
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	if err := s.chatStore.EditMessage(ctx, chatID, messageID, text); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to edit message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s edited", messageID)), nil
}

func (s *Server) handleDeleteMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	messageID := request.GetString("message_id", "")
	if chatID == "" || messageID == "" {
		return mcp.NewToolResultError("chat_id and message_id are required"), nil
	}

	if err := s.chatStore.DeleteMessage(ctx, chatID, messageID, true); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Message %s deleted for everyone", messageID)), nil
}

func (s *Server) handleMuteChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	uid := request.GetString("uid", "")
	if chatID == "" || uid == "" {
		return mcp.NewToolResultError("chat_id and uid are required"), nil
	}
	mute := request.GetBool("mute", true)

	s.chatStore.MuteChat(ctx, chatID, uid, mute)

	verb := "muted"
	if !mute {
		verb = "unmuted"
	}
	return mcp.NewToolResultText(fmt.Sprintf("Chat %s %s for %s", chatID, verb, uid)), nil
}

func (s *Server) handleClearChat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chatID := request.GetString("chat_id", "")
	if chatID == "" {
		return mcp.NewToolResultError("chat_id is required"), nil
	}

	if err := s.chatStore.ClearChat(ctx, chatID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to clear chat: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Chat %s cleared", chatID)), nil
}

func (s *Server) handleSearchMessages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	limit := request.GetInt("limit", 20)
	if limit > 100 {
		limit = 100
	}
	if limit <= 0 {
		limit = 20
	}

	messages, err := s.chatStore.SearchMessages(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Search failed: %v", err)), nil
	}

	if len(messages) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages matching %q", query)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d message(s) matching %q:\n\n", len(messages), query))

	for _, msg := range messages {
		timestamp := msg.Timestamp.Format("2006-01-02 15:04")
		result.WriteString(fmt.Sprintf("[%s] chat %s, %s:\n", timestamp, msg.ChatID, msg.SenderID))
		result.WriteString(fmt.Sprintf("  %s\n", msg.Text))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handlePostStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := request.GetString("uid", "")
	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}
	text := request.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("text is required"), nil
	}

	draft := service.StatusDraft{
		Text:       text,
		Background: request.GetString("background", ""),
		Font:       request.GetString("font", ""),
	}

	status, err := s.statusSvc.Post(ctx, uid, draft)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to post status: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Status posted (id %s)", status.ID)), nil
}

func (s *Server) handleListStatuses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := request.GetString("uid", "")
	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}

	mine, others, err := s.statusSvc.ActiveGrouped(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list statuses: %v", err)), nil
	}

	if len(mine) == 0 && len(others) == 0 {
		return mcp.NewToolResultText("No active statuses."), nil
	}

	var result strings.Builder
	if len(mine) > 0 {
		result.WriteString(fmt.Sprintf("My status (%d update(s)):\n", len(mine)))
		writeStatuses(&result, mine)
		result.WriteString("\n")
	}

	for _, group := range others {
		result.WriteString(fmt.Sprintf("%s (%d update(s)):\n", group.UserName, len(group.Statuses)))
		writeStatuses(&result, group.Statuses)
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func writeStatuses(result *strings.Builder, statuses []*domain.Status) {
	for _, st := range statuses {
		timestamp := st.CreatedAt.Format("2006-01-02 15:04")
		switch {
		case st.ImageURL != "":
			result.WriteString(fmt.Sprintf("  [%s] [Photo] %s\n", timestamp, st.Text))
		default:
			result.WriteString(fmt.Sprintf("  [%s] %s\n", timestamp, st.Text))
		}
		if len(st.ViewedBy) > 0 {
			result.WriteString(fmt.Sprintf("    Seen by %d\n", len(st.ViewedBy)))
		}
	}
}

func (s *Server) handleListCalls(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := request.GetString("uid", "")
	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}

	calls, err := s.callSvc.History(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get call history: %v", err)), nil
	}

	if len(calls) == 0 {
		return mcp.NewToolResultText("No call history."), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d call(s):\n\n", len(calls)))

	for i, call := range calls {
		direction := "Outgoing"
		peer := call.ReceiverName
		if call.ReceiverID == uid {
			direction = "Incoming"
			peer = call.CallerName
		}
		result.WriteString(fmt.Sprintf("%d. %s %s call with %s\n", i+1, direction, call.Type, peer))
		result.WriteString(fmt.Sprintf("   Time: %s\n", call.CreatedAt.Format("2006-01-02 15:04")))
		result.WriteString(fmt.Sprintf("   Status: %s\n", call.Status))
		result.WriteString("\n")
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (s *Server) handleGetUser(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := request.GetString("uid", "")
	if uid == "" {
		return mcp.NewToolResultError("uid is required"), nil
	}

	user, err := s.userSvc.Get(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get user: %v", err)), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Name: %s\n", user.DisplayName()))
	result.WriteString(fmt.Sprintf("UID: %s\n", user.UID))
	if user.Email != "" {
		result.WriteString(fmt.Sprintf("Email: %s\n", user.Email))
	}
	if user.Bio != "" {
		result.WriteString(fmt.Sprintf("Bio: %s\n", user.Bio))
	}
	if user.OnlineStatus && user.OnlineStatusVisible {
		result.WriteString("Online now\n")
	} else if !user.LastSeen.IsZero() && user.LastSeenVisibility == domain.LastSeenEveryone {
		result.WriteString(fmt.Sprintf("Last seen: %s\n", user.LastSeen.Format("2006-01-02 15:04")))
	}

	return mcp.NewToolResultText(result.String()), nil
}
