package mcp

import (
	"context"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zivox/zivox/internal/service"
	"github.com/zivox/zivox/internal/store"
)

type ServerConfig struct {
	Address string
}

type Server struct {
	mcpServer  *server.MCPServer
	sseServer  *server.SSEServer
	httpServer *http.Server
	chatStore  *store.ChatStore
	userSvc    *service.UserService
	statusSvc  *service.StatusService
	callSvc    *service.CallService
	config     ServerConfig
}

func NewServer(
	chatStore *store.ChatStore,
	userSvc *service.UserService,
	statusSvc *service.StatusService,
	callSvc *service.CallService,
	config ServerConfig,
) *Server {
	s := &Server{
		chatStore: chatStore,
		userSvc:   userSvc,
		statusSvc: statusSvc,
		callSvc:   callSvc,
		config:    config,
	}

	s.mcpServer = server.NewMCPServer(
		"zivox",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	s.sseServer = server.NewSSEServer(s.mcpServer,
		server.WithKeepAliveInterval(30*time.Second),
	)

	return s
}

func (s *Server) registerTools() {
	// List chats tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_list_chats",
			mcp.WithDescription("List a user's chats sorted by most recent activity"),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("User id whose chat list to fetch"),
			),
		),
		s.handleListChats,
	)

	// Get messages tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_get_messages",
			mcp.WithDescription("Get the most recent messages of a chat, oldest first"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum messages to return (default 30, max 200)"),
			),
		),
		s.handleGetMessages,
	)

	// Send message tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_send_message",
			mcp.WithDescription("Send a text message to a chat"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id to send the message to"),
			),
			mcp.WithString("sender_id",
				mcp.Required(),
				mcp.Description("Sending user id"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Message text to send"),
			),
		),
		s.handleSendMessage,
	)

	// Start chat tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_start_chat",
			mcp.WithDescription("Find or create the private chat between two users and return its id"),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("Initiating user id"),
			),
			mcp.WithString("other_uid",
				mcp.Required(),
				mcp.Description("Counterpart user id"),
			),
		),
		s.handleStartChat,
	)

	// React tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_react",
			mcp.WithDescription("Set a user's reaction emoji on a message (one slot per user, overwritten)"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id containing the message"),
			),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("Message id to react to"),
			),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("Reacting user id"),
			),
			mcp.WithString("emoji",
				mcp.Required(),
				mcp.Description("Reaction emoji (e.g., '👍', '❤️', '😂')"),
			),
		),
		s.handleReact,
	)

	// Edit message tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_edit_message",
			mcp.WithDescription("Replace a message's text and mark it edited"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id containing the message"),
			),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("Message id to edit"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("New message text"),
			),
		),
		s.handleEditMessage,
	)

	// Delete message tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_delete_message",
			mcp.WithDescription("Delete a message for everyone (content cleared, row kept)"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id containing the message"),
			),
			mcp.WithString("message_id",
				mcp.Required(),
				mcp.Description("Message id to delete"),
			),
		),
		s.handleDeleteMessage,
	)

	// Mute chat tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_mute_chat",
			mcp.WithDescription("Mute or unmute a chat for a user"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id"),
			),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("User id toggling the mute"),
			),
			mcp.WithBoolean("mute",
				mcp.Description("true to mute, false to unmute (default true)"),
			),
		),
		s.handleMuteChat,
	)

	// Clear chat tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_clear_chat",
			mcp.WithDescription("Delete every message in a chat and reset its preview"),
			mcp.WithString("chat_id",
				mcp.Required(),
				mcp.Description("Chat id to clear"),
			),
		),
		s.handleClearChat,
	)

	// Search messages tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_search_messages",
			mcp.WithDescription("Search messages across all chats by text content"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Search query text"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum results to return (default 20, max 100)"),
			),
		),
		s.handleSearchMessages,
	)

	// Post status tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_post_status",
			mcp.WithDescription("Post a text status update (visible for 24 hours)"),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("Posting user id"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Status text"),
			),
			mcp.WithString("background",
				mcp.Description("Background color/style"),
			),
			mcp.WithString("font",
				mcp.Description("Font name"),
			),
		),
		s.handlePostStatus,
	)

	// List statuses tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_list_statuses",
			mcp.WithDescription("List statuses posted in the last 24 hours, grouped by owner"),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("Viewing user id"),
			),
		),
		s.handleListStatuses,
	)

	// List calls tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_list_calls",
			mcp.WithDescription("List a user's call history, newest first"),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("User id"),
			),
		),
		s.handleListCalls,
	)

	// Get user tool
	s.mcpServer.AddTool(
		mcp.NewTool("zivox_get_user",
			mcp.WithDescription("Get a user's public profile"),
			mcp.WithString("uid",
				mcp.Required(),
				mcp.Description("User id"),
			),
		),
		s.handleGetUser,
	)
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.Handle("/sse", s.sseServer.SSEHandler())
	mux.Handle("/message", s.sseServer.MessageHandler())

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Addr:    s.config.Address,
		Handler: mux,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
