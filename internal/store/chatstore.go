// Package store implements the chat data-synchronization layer: standing
// chat-list and message-tail subscriptions over the event bus, a backward
// pagination cursor into message history, and the write paths that mediate
// local state against the document repositories.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/media"
	"github.com/zivox/zivox/internal/repository"
)

// PageSize is the message window size for both the live tail and each
// backward page.
const PageSize = 30

// typingWindow is how long a typing row counts as active after its last
// refresh.
const typingWindow = 6 * time.Second

// pageCursor points at the oldest fetched message. The id breaks timestamp
// ties.
type pageCursor struct {
	ts time.Time
	id string
}

// liveQuery is one standing subscription: a filtered bus channel plus a done
// marker so teardown can wait for the consumer goroutine to drain out.
type liveQuery struct {
	bus    domain.EventBus
	events <-chan domain.Event
	done   chan struct{}
}

func newLiveQuery(bus domain.EventBus, types []domain.EventType) *liveQuery {
	return &liveQuery{
		bus:    bus,
		events: bus.Subscribe(types),
		done:   make(chan struct{}),
	}
}

// stop releases the subscription and waits until the consumer has exited, so
// a replacement can never race its predecessor.
func (l *liveQuery) stop() {
	l.bus.Unsubscribe(l.events)
	<-l.done
}

// ChatStore is the per-session synchronization store. At most one chat-list
// subscription and one message subscription are live at a time; starting a
// new one tears down its predecessor first.
type ChatStore struct {
	chats  repository.ChatRepository
	msgs   repository.MessageRepository
	users  repository.UserRepository
	typing repository.TypingRepository
	bus    domain.EventBus
	log    zerolog.Logger

	mu              sync.Mutex
	sessionUID      string
	chatList        []*domain.Chat
	activeChat      *domain.Chat
	messages        []*domain.Message
	cursor          *pageCursor
	tailBound       *pageCursor
	hasMore         bool
	loadingChats    bool
	loadingMessages bool
	chatSub         *liveQuery
	msgSub          *liveQuery
	onChats         func([]*domain.Chat)
	onMessages      func([]*domain.Message)
}

func New(
	chats repository.ChatRepository,
	msgs repository.MessageRepository,
	users repository.UserRepository,
	typing repository.TypingRepository,
	bus domain.EventBus,
	log zerolog.Logger,
) *ChatStore {
	return &ChatStore{
		chats:   chats,
		msgs:    msgs,
		users:   users,
		typing:  typing,
		bus:     bus,
		log:     log,
		hasMore: true,
	}
}

// OnChatsChanged registers the callback receiving every chat-list snapshot.
func (s *ChatStore) OnChatsChanged(fn func([]*domain.Chat)) {
	s.mu.Lock()
	s.onChats = fn
	s.mu.Unlock()
}

// OnMessagesChanged registers the callback receiving every message snapshot.
func (s *ChatStore) OnMessagesChanged(fn func([]*domain.Message)) {
	s.mu.Lock()
	s.onMessages = fn
	s.mu.Unlock()
}

// SubscribeChats establishes the standing chat-list view for uid: an initial
// snapshot now, then a full rebuild on every relevant bus event. Any previous
// chat-list subscription is released first. A failed rebuild ends the
// subscription without retry; the caller re-invokes to recover.
func (s *ChatStore) SubscribeChats(ctx context.Context, uid string) error {
	s.stopChatSub()

	s.mu.Lock()
	s.sessionUID = uid
	s.loadingChats = true
	s.mu.Unlock()

	if err := s.rebuildChatList(ctx, uid); err != nil {
		s.mu.Lock()
		s.loadingChats = false
		s.mu.Unlock()
		return err
	}

	lq := newLiveQuery(s.bus, []domain.EventType{
		domain.EventTypeChatUpdated,
		domain.EventTypeMessageAppended,
		domain.EventTypeChatCleared,
		domain.EventTypeUserUpdated,
	})

	go func() {
		defer close(lq.done)
		for range lq.events {
			if err := s.rebuildChatList(ctx, uid); err != nil {
				s.log.Error().Err(err).Str("uid", uid).Msg("chat subscription error")
				s.mu.Lock()
				s.loadingChats = false
				s.mu.Unlock()
				return
			}
		}
	}()

	s.mu.Lock()
	s.chatSub = lq
	s.mu.Unlock()
	return nil
}

// rebuildChatList is the full snapshot rebuild: query membership, decorate
// private chats with the counterpart profile, sort by preview recency.
func (s *ChatStore) rebuildChatList(ctx context.Context, uid string) error {
	list, err := s.chats.GetByMember(ctx, uid)
	if err != nil {
		return err
	}

	for _, chat := range list {
		if chat.Type != domain.ChatTypePrivate {
			continue
		}
		other := chat.OtherMember(uid)
		if other == "" {
			continue
		}
		user, err := s.users.GetByUID(ctx, other)
		if err != nil || user == nil {
			// Point lookup failed: fall back to a bare placeholder rather
			// than dropping the chat.
			chat.OtherUser = &domain.User{UID: other, Name: "User"}
			continue
		}
		chat.OtherUser = user
	}

	sort.SliceStable(list, func(i, j int) bool {
		return previewMillis(list[i].LastMessageTime) > previewMillis(list[j].LastMessageTime)
	})

	s.mu.Lock()
	s.chatList = list
	s.loadingChats = false
	if s.activeChat != nil {
		// Replace the active chat with its refreshed copy when present; keep
		// the previous reference when transiently absent.
		for _, chat := range list {
			if chat.ID == s.activeChat.ID {
				s.activeChat = chat
				break
			}
		}
	}
	cb := s.onChats
	snapshot := append([]*domain.Chat(nil), list...)
	s.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return nil
}

// previewMillis treats a missing lastMessageTime as 0 so empty chats sort
// last.
func previewMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// SelectChat makes chat the active one: the prior message subscription is
// released, local message state and the pagination cursor are reset, and a
// fresh tail subscription is started. Passing nil just deselects.
func (s *ChatStore) SelectChat(ctx context.Context, chat *domain.Chat) error {
	s.stopMsgSub()

	s.mu.Lock()
	s.activeChat = chat
	s.messages = nil
	s.cursor = nil
	s.tailBound = nil
	s.hasMore = true
	s.loadingMessages = chat != nil
	s.mu.Unlock()

	if chat == nil {
		return nil
	}
	return s.subscribeMessages(ctx, chat.ID)
}

func (s *ChatStore) subscribeMessages(ctx context.Context, chatID string) error {
	if err := s.refreshTail(ctx, chatID); err != nil {
		s.mu.Lock()
		s.loadingMessages = false
		s.mu.Unlock()
		return err
	}

	lq := newLiveQuery(s.bus, []domain.EventType{
		domain.EventTypeMessageAppended,
		domain.EventTypeMessageUpdated,
		domain.EventTypeChatCleared,
	})

	go func() {
		defer close(lq.done)
		for ev := range lq.events {
			if eventChatID(ev) != chatID {
				continue
			}
			if ev.Type() == domain.EventTypeChatCleared {
				s.mu.Lock()
				s.messages = nil
				s.cursor = nil
				s.tailBound = nil
				s.hasMore = true
				s.mu.Unlock()
			}
			if err := s.refreshTail(ctx, chatID); err != nil {
				s.log.Error().Err(err).Str("chat", chatID).Msg("messages subscription error")
				s.mu.Lock()
				s.loadingMessages = false
				s.mu.Unlock()
				return
			}
		}
	}()

	s.mu.Lock()
	s.msgSub = lq
	s.mu.Unlock()
	return nil
}

func eventChatID(ev domain.Event) string {
	switch e := ev.(type) {
	case domain.MessageAppendedEvent:
		return e.Message.ChatID
	case domain.MessageUpdatedEvent:
		return e.ChatID
	case domain.ChatClearedEvent:
		return e.ChatID
	}
	return ""
}

// refreshTail re-delivers the latest page. The first delivery seeds the
// pagination cursor and marks the tail bound; later deliveries keep the
// in-memory prefix strictly older than the new tail's oldest row and replace
// everything from there on, so pager-loaded history survives and the two
// windows stay contiguous without overlap. The cursor is never moved here —
// only backward pages advance it.
func (s *ChatStore) refreshTail(ctx context.Context, chatID string) error {
	page, err := s.msgs.GetLatest(ctx, chatID, PageSize)
	if err != nil {
		return err
	}
	tail := reverseMessages(page)

	s.mu.Lock()
	if s.activeChat == nil || s.activeChat.ID != chatID {
		s.mu.Unlock()
		return nil
	}

	if s.tailBound == nil {
		s.messages = tail
		if len(tail) > 0 {
			oldest := tail[0]
			s.cursor = &pageCursor{ts: oldest.Timestamp, id: oldest.ID}
			s.tailBound = &pageCursor{ts: oldest.Timestamp, id: oldest.ID}
		}
		s.hasMore = len(page) == PageSize
	} else if len(tail) == 0 {
		s.messages = nil
	} else {
		split := pageCursor{ts: tail[0].Timestamp, id: tail[0].ID}
		var older []*domain.Message
		for _, m := range s.messages {
			if !cursorBefore(m, split) {
				break
			}
			older = append(older, m)
		}
		s.messages = append(append([]*domain.Message(nil), older...), tail...)
	}

	s.loadingMessages = false
	cb := s.onMessages
	snapshot := append([]*domain.Message(nil), s.messages...)
	s.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return nil
}

// cursorBefore reports whether m sorts strictly before the cursor position.
func cursorBefore(m *domain.Message, c pageCursor) bool {
	if m.Timestamp.Before(c.ts) {
		return true
	}
	return m.Timestamp.Equal(c.ts) && m.ID < c.id
}

// LoadMore pages backward into history: one page strictly older than the
// cursor, prepended, cursor advanced. Safe to call repeatedly; a no-op when
// hasMore is false or no cursor exists yet.
func (s *ChatStore) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasMore || s.cursor == nil || s.activeChat == nil {
		s.mu.Unlock()
		return nil
	}
	chatID := s.activeChat.ID
	cur := *s.cursor
	s.mu.Unlock()

	page, err := s.msgs.GetPageBefore(ctx, chatID, cur.ts, cur.id, PageSize)
	if err != nil {
		return err
	}
	older := reverseMessages(page)

	s.mu.Lock()
	if s.activeChat == nil || s.activeChat.ID != chatID {
		s.mu.Unlock()
		return nil
	}
	if len(older) > 0 {
		s.messages = append(append([]*domain.Message(nil), older...), s.messages...)
		oldest := older[0]
		s.cursor = &pageCursor{ts: oldest.Timestamp, id: oldest.ID}
	}
	// Full page implies more may exist; an undercount means no more. The
	// heuristic can under-report on an exact boundary, never duplicate.
	s.hasMore = len(page) == PageSize
	cb := s.onMessages
	snapshot := append([]*domain.Message(nil), s.messages...)
	s.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return nil
}

// SendMessage appends the message document and then updates the parent
// chat's preview fields. The two writes are deliberately not atomic: a crash
// in between leaves the preview stale but the message intact.
func (s *ChatStore) SendMessage(ctx context.Context, chatID, senderID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	now := time.Now().UTC()
	msg := domain.NewTextMessage(uuid.NewString(), chatID, senderID, text, now)

	if err := s.msgs.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chats.UpdatePreview(ctx, chatID, text, time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("chat", chatID).Msg("failed to update chat preview")
	}

	s.bus.Publish(domain.MessageAppendedEvent{Message: msg, EventTime: now})
	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chatID, EventTime: now})
	return msg, nil
}

// SendMediaMessage converts the payload to a bounded inline representation
// and sends it with an empty text body. The chat preview gets a fixed label
// per media kind rather than the media itself.
func (s *ChatStore) SendMediaMessage(ctx context.Context, chatID, senderID string, data []byte, kind domain.MediaType) (*domain.Message, error) {
	var mediaURL string
	var err error

	switch kind {
	case domain.MediaTypeImage:
		mediaURL, err = media.EncodeImage(data, media.ChatImageOptions)
	case domain.MediaTypeAudio:
		mediaURL, err = media.EncodeFileChecked(data)
	case domain.MediaTypeVideo:
		mediaURL, err = media.EncodeVideo(data)
	default:
		mediaURL, err = media.EncodeFileChecked(data)
	}
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	msg := domain.NewMediaMessage(uuid.NewString(), chatID, senderID, mediaURL, kind, now)

	if err := s.msgs.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chats.UpdatePreview(ctx, chatID, kind.PreviewLabel(), time.Now().UTC()); err != nil {
		s.log.Warn().Err(err).Str("chat", chatID).Msg("failed to update chat preview")
	}

	s.bus.Publish(domain.MessageAppendedEvent{Message: msg, EventTime: now})
	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chatID, EventTime: now})
	return msg, nil
}

// StartChat returns the existing private chat between the two users or
// creates one. Lookup-before-create without a uniqueness constraint: two
// concurrent initiations between the same pair can mint two chats.
func (s *ChatStore) StartChat(ctx context.Context, currentUID, otherUID string) (string, error) {
	existing, err := s.chats.GetByMember(ctx, currentUID)
	if err != nil {
		return "", err
	}
	for _, chat := range existing {
		if chat.Type == domain.ChatTypePrivate && chat.Members.Contains(otherUID) {
			return chat.ID, nil
		}
	}

	now := time.Now().UTC()
	chat := domain.NewPrivateChat(uuid.NewString(), currentUID, otherUID, now)
	chat.LastMessageTime = now
	if err := s.chats.Create(ctx, chat); err != nil {
		return "", err
	}

	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chat.ID, EventTime: now})
	return chat.ID, nil
}

// StartGroupChat creates a group chat containing the creator and the given
// members, deduplicated. Unlike private chats, every call mints a new group.
func (s *ChatStore) StartGroupChat(ctx context.Context, creatorUID string, memberUIDs []string) (string, error) {
	members := domain.StringSet{creatorUID}
	for _, uid := range memberUIDs {
		members = members.Add(uid)
	}
	if len(members) < 2 {
		return "", fmt.Errorf("a group chat needs at least one other member")
	}

	now := time.Now().UTC()
	chat := domain.NewGroupChat(uuid.NewString(), members, now)
	chat.LastMessageTime = now
	if err := s.chats.Create(ctx, chat); err != nil {
		return "", err
	}

	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chat.ID, EventTime: now})
	return chat.ID, nil
}

// EditMessage replaces the text and marks the message edited. No edit
// history is retained.
func (s *ChatStore) EditMessage(ctx context.Context, chatID, messageID, newText string) error {
	if err := s.msgs.UpdateText(ctx, messageID, newText); err != nil {
		return err
	}
	s.bus.Publish(domain.MessageUpdatedEvent{ChatID: chatID, MessageID: messageID, EventTime: time.Now().UTC()})
	return nil
}

// DeleteMessage tombstones the message for everyone: content cleared, row
// retained. Delete-for-me is a view concern and writes nothing.
func (s *ChatStore) DeleteMessage(ctx context.Context, chatID, messageID string, forEveryone bool) error {
	if !forEveryone {
		return nil
	}
	if err := s.msgs.Tombstone(ctx, messageID); err != nil {
		return err
	}
	s.bus.Publish(domain.MessageUpdatedEvent{ChatID: chatID, MessageID: messageID, EventTime: time.Now().UTC()})
	return nil
}

// AddReaction overwrites the user's single reaction slot on the message.
func (s *ChatStore) AddReaction(ctx context.Context, chatID, messageID, uid, emoji string) error {
	if err := s.msgs.SetReaction(ctx, messageID, uid, emoji); err != nil {
		return err
	}
	s.bus.Publish(domain.MessageUpdatedEvent{ChatID: chatID, MessageID: messageID, EventTime: time.Now().UTC()})
	return nil
}

// MarkSeen records uid in each message's seenBy set. Failures are logged per
// message and skipped.
func (s *ChatStore) MarkSeen(ctx context.Context, chatID string, messageIDs []string, uid string) {
	for _, id := range messageIDs {
		if err := s.msgs.AddSeenBy(ctx, id, uid); err != nil {
			s.log.Warn().Err(err).Str("message", id).Msg("failed to mark seen")
			continue
		}
		s.bus.Publish(domain.MessageUpdatedEvent{ChatID: chatID, MessageID: id, EventTime: time.Now().UTC()})
	}
}

// MuteChat toggles uid's membership in the chat's mutedBy set. Failures are
// absorbed.
func (s *ChatStore) MuteChat(ctx context.Context, chatID, uid string, mute bool) {
	if err := s.chats.SetMuted(ctx, chatID, uid, mute); err != nil {
		s.log.Debug().Err(err).Str("chat", chatID).Msg("mute toggle failed")
		return
	}
	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chatID, EventTime: time.Now().UTC()})
}

// PinChat toggles uid's membership in the chat's pinnedBy set. Failures are
// absorbed.
func (s *ChatStore) PinChat(ctx context.Context, chatID, uid string, pin bool) {
	if err := s.chats.SetPinned(ctx, chatID, uid, pin); err != nil {
		s.log.Debug().Err(err).Str("chat", chatID).Msg("pin toggle failed")
		return
	}
	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chatID, EventTime: time.Now().UTC()})
}

// ClearChat deletes every message in the chat and then resets the preview.
// The two writes are independent: a crash in between leaves a stale preview
// over an emptied chat.
func (s *ChatStore) ClearChat(ctx context.Context, chatID string) error {
	if err := s.msgs.DeleteByChat(ctx, chatID); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.chats.UpdatePreview(ctx, chatID, "", now); err != nil {
		s.log.Warn().Err(err).Str("chat", chatID).Msg("failed to reset chat preview")
	}

	s.mu.Lock()
	if s.activeChat != nil && s.activeChat.ID == chatID {
		s.messages = nil
	}
	s.mu.Unlock()

	s.bus.Publish(domain.ChatClearedEvent{ChatID: chatID, EventTime: now})
	s.bus.Publish(domain.ChatUpdatedEvent{ChatID: chatID, EventTime: now})
	return nil
}

// SetTyping writes or clears uid's typing marker for the chat. Best effort:
// failures are absorbed.
func (s *ChatStore) SetTyping(ctx context.Context, chatID, uid string, isTyping bool) {
	var err error
	if isTyping {
		err = s.typing.Set(ctx, chatID, uid, time.Now().UTC())
	} else {
		err = s.typing.Clear(ctx, chatID, uid)
	}
	if err != nil {
		s.log.Debug().Err(err).Str("chat", chatID).Msg("typing write failed")
		return
	}
	s.bus.Publish(domain.TypingChangedEvent{ChatID: chatID, UID: uid, IsTyping: isTyping, EventTime: time.Now().UTC()})
}

// TypingUsers returns uids with a fresh typing marker in the chat, excluding
// the session user.
func (s *ChatStore) TypingUsers(ctx context.Context, chatID string) []string {
	uids, err := s.typing.Active(ctx, chatID, time.Now().UTC().Add(-typingWindow))
	if err != nil {
		s.log.Debug().Err(err).Str("chat", chatID).Msg("typing read failed")
		return nil
	}

	s.mu.Lock()
	session := s.sessionUID
	s.mu.Unlock()

	out := uids[:0]
	for _, uid := range uids {
		if uid != session {
			out = append(out, uid)
		}
	}
	return out
}

// GetMessages is a one-shot query of the latest messages, oldest first, for
// request/response callers that do not hold a subscription.
func (s *ChatStore) GetMessages(ctx context.Context, chatID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = PageSize
	}
	page, err := s.msgs.GetLatest(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}
	return reverseMessages(page), nil
}

// GetChats is a one-shot decorated chat list for request/response callers.
func (s *ChatStore) GetChats(ctx context.Context, uid string) ([]*domain.Chat, error) {
	list, err := s.chats.GetByMember(ctx, uid)
	if err != nil {
		return nil, err
	}
	for _, chat := range list {
		if chat.Type != domain.ChatTypePrivate {
			continue
		}
		if other := chat.OtherMember(uid); other != "" {
			if user, err := s.users.GetByUID(ctx, other); err == nil && user != nil {
				chat.OtherUser = user
			}
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return previewMillis(list[i].LastMessageTime) > previewMillis(list[j].LastMessageTime)
	})
	return list, nil
}

func (s *ChatStore) SearchMessages(ctx context.Context, query string, limit int) ([]*domain.Message, error) {
	return s.msgs.Search(ctx, query, limit)
}

// Cleanup tears down both subscriptions and clears local state. Used on view
// teardown.
func (s *ChatStore) Cleanup() {
	s.stopChatSub()
	s.stopMsgSub()

	s.mu.Lock()
	s.chatList = nil
	s.activeChat = nil
	s.messages = nil
	s.cursor = nil
	s.tailBound = nil
	s.hasMore = true
	s.loadingChats = false
	s.loadingMessages = false
	s.mu.Unlock()
}

func (s *ChatStore) stopChatSub() {
	s.mu.Lock()
	lq := s.chatSub
	s.chatSub = nil
	s.mu.Unlock()
	if lq != nil {
		lq.stop()
	}
}

func (s *ChatStore) stopMsgSub() {
	s.mu.Lock()
	lq := s.msgSub
	s.msgSub = nil
	s.mu.Unlock()
	if lq != nil {
		lq.stop()
	}
}

// EventBus exposes the bus so transports can stream raw invalidation events.
func (s *ChatStore) EventBus() domain.EventBus {
	return s.bus
}

// Chats returns the current chat-list snapshot.
func (s *ChatStore) Chats() []*domain.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Chat(nil), s.chatList...)
}

// Messages returns the current in-memory message list, oldest first.
func (s *ChatStore) Messages() []*domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Message(nil), s.messages...)
}

func (s *ChatStore) ActiveChat() *domain.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeChat
}

func (s *ChatStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

func (s *ChatStore) LoadingChats() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingChats
}

func (s *ChatStore) LoadingMessages() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingMessages
}

func reverseMessages(in []*domain.Message) []*domain.Message {
	out := make([]*domain.Message, len(in))
	for i, m := range in {
		out[len(in)-1-i] = m
	}
	return out
}
