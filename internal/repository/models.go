package repository

import (
	"time"

	"github.com/zivox/zivox/internal/domain"
)

type ChatModel struct {
	ID              string           `gorm:"primaryKey;column:id"`
	Type            string           `gorm:"column:type"`
	Members         domain.StringSet `gorm:"column:members;serializer:json"`
	LastMessage     string           `gorm:"column:last_message"`
	LastMessageTime time.Time        `gorm:"column:last_message_time;index"`
	PinnedBy        domain.StringSet `gorm:"column:pinned_by;serializer:json"`
	MutedBy         domain.StringSet `gorm:"column:muted_by;serializer:json"`
	CreatedAt       time.Time        `gorm:"column:created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at"`
}

func (ChatModel) TableName() string { return "chats" }

type MessageModel struct {
	ID                 string             `gorm:"primaryKey;column:id"`
	ChatID             string             `gorm:"column:chat_id;index:idx_chat_timestamp"`
	SenderID           string             `gorm:"column:sender_id"`
	Text               string             `gorm:"column:text"`
	MediaURL           string             `gorm:"column:media_url"`
	MediaType          string             `gorm:"column:media_type"`
	ReplyTo            string             `gorm:"column:reply_to"`
	SeenBy             domain.StringSet   `gorm:"column:seen_by;serializer:json"`
	DeliveredTo        domain.StringSet   `gorm:"column:delivered_to;serializer:json"`
	Reactions          domain.ReactionMap `gorm:"column:reactions;serializer:json"`
	Edited             bool               `gorm:"column:edited"`
	DeletedForEveryone bool               `gorm:"column:deleted_for_everyone"`
	Timestamp          time.Time          `gorm:"column:timestamp;index:idx_chat_timestamp"`
	CreatedAt          time.Time          `gorm:"column:created_at"`
	UpdatedAt          time.Time          `gorm:"column:updated_at"`
}

func (MessageModel) TableName() string { return "messages" }

type UserModel struct {
	UID                 string    `gorm:"primaryKey;column:uid"`
	Name                string    `gorm:"column:name"`
	Email               string    `gorm:"column:email;index"`
	ProfilePic          string    `gorm:"column:profile_pic"`
	Bio                 string    `gorm:"column:bio"`
	OnlineStatus        bool      `gorm:"column:online_status"`
	LastSeen            time.Time `gorm:"column:last_seen"`
	LastSeenVisibility  string    `gorm:"column:last_seen_visibility"`
	OnlineStatusVisible bool      `gorm:"column:online_status_visible"`
	CreatedAt           time.Time `gorm:"column:created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (UserModel) TableName() string { return "users" }

type StatusModel struct {
	ID         string           `gorm:"primaryKey;column:id"`
	UID        string           `gorm:"column:uid;index"`
	UserName   string           `gorm:"column:user_name"`
	UserPic    string           `gorm:"column:user_pic"`
	Text       string           `gorm:"column:text"`
	ImageURL   string           `gorm:"column:image_url"`
	Background string           `gorm:"column:background"`
	Font       string           `gorm:"column:font"`
	TextColor  string           `gorm:"column:text_color"`
	Song       string           `gorm:"column:song"`
	ViewedBy   domain.StringSet `gorm:"column:viewed_by;serializer:json"`
	CreatedAt  time.Time        `gorm:"column:created_at;index"`
	UpdatedAt  time.Time        `gorm:"column:updated_at"`
}

func (StatusModel) TableName() string { return "statuses" }

type CallModel struct {
	ID           string           `gorm:"primaryKey;column:id"`
	CallerID     string           `gorm:"column:caller_id"`
	CallerName   string           `gorm:"column:caller_name"`
	CallerPic    string           `gorm:"column:caller_pic"`
	ReceiverID   string           `gorm:"column:receiver_id"`
	ReceiverName string           `gorm:"column:receiver_name"`
	ReceiverPic  string           `gorm:"column:receiver_pic"`
	Type         string           `gorm:"column:type"`
	Status       string           `gorm:"column:status"`
	Duration     int              `gorm:"column:duration"`
	Participants domain.StringSet `gorm:"column:participants;serializer:json"`
	CreatedAt    time.Time        `gorm:"column:created_at;index"`
	UpdatedAt    time.Time        `gorm:"column:updated_at"`
}

func (CallModel) TableName() string { return "calls" }

type TypingModel struct {
	ChatID    string    `gorm:"primaryKey;column:chat_id"`
	UID       string    `gorm:"primaryKey;column:uid"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (TypingModel) TableName() string { return "typing" }

// AllModels is the AutoMigrate set.
func AllModels() []any {
	return []any{
		&ChatModel{},
		&MessageModel{},
		&UserModel{},
		&StatusModel{},
		&CallModel{},
		&TypingModel{},
	}
}

// Conversion functions
func ChatModelToDomain(m *ChatModel) *domain.Chat {
	if m == nil {
		return nil
	}
	return &domain.Chat{
		ID:              m.ID,
		Type:            domain.ChatType(m.Type),
		Members:         m.Members,
		LastMessage:     m.LastMessage,
		LastMessageTime: m.LastMessageTime,
		PinnedBy:        m.PinnedBy,
		MutedBy:         m.MutedBy,
		CreatedAt:       m.CreatedAt,
	}
}

func ChatDomainToModel(c *domain.Chat) *ChatModel {
	if c == nil {
		return nil
	}
	return &ChatModel{
		ID:              c.ID,
		Type:            string(c.Type),
		Members:         c.Members,
		LastMessage:     c.LastMessage,
		LastMessageTime: c.LastMessageTime,
		PinnedBy:        c.PinnedBy,
		MutedBy:         c.MutedBy,
		CreatedAt:       c.CreatedAt,
	}
}

func MessageModelToDomain(m *MessageModel) *domain.Message {
	if m == nil {
		return nil
	}
	return &domain.Message{
		ID:                 m.ID,
		ChatID:             m.ChatID,
		SenderID:           m.SenderID,
		Text:               m.Text,
		MediaURL:           m.MediaURL,
		MediaType:          domain.MediaType(m.MediaType),
		ReplyTo:            m.ReplyTo,
		SeenBy:             m.SeenBy,
		DeliveredTo:        m.DeliveredTo,
		Reactions:          m.Reactions,
		Edited:             m.Edited,
		DeletedForEveryone: m.DeletedForEveryone,
		Timestamp:          m.Timestamp,
	}
}

func MessageDomainToModel(msg *domain.Message) *MessageModel {
	if msg == nil {
		return nil
	}
	return &MessageModel{
		ID:                 msg.ID,
		ChatID:             msg.ChatID,
		SenderID:           msg.SenderID,
		Text:               msg.Text,
		MediaURL:           msg.MediaURL,
		MediaType:          string(msg.MediaType),
		ReplyTo:            msg.ReplyTo,
		SeenBy:             msg.SeenBy,
		DeliveredTo:        msg.DeliveredTo,
		Reactions:          msg.Reactions,
		Edited:             msg.Edited,
		DeletedForEveryone: msg.DeletedForEveryone,
		Timestamp:          msg.Timestamp,
	}
}

func UserModelToDomain(m *UserModel) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		UID:                 m.UID,
		Name:                m.Name,
		Email:               m.Email,
		ProfilePic:          m.ProfilePic,
		Bio:                 m.Bio,
		OnlineStatus:        m.OnlineStatus,
		LastSeen:            m.LastSeen,
		LastSeenVisibility:  domain.LastSeenVisibility(m.LastSeenVisibility),
		OnlineStatusVisible: m.OnlineStatusVisible,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func UserDomainToModel(u *domain.User) *UserModel {
	if u == nil {
		return nil
	}
	return &UserModel{
		UID:                 u.UID,
		Name:                u.Name,
		Email:               u.Email,
		ProfilePic:          u.ProfilePic,
		Bio:                 u.Bio,
		OnlineStatus:        u.OnlineStatus,
		LastSeen:            u.LastSeen,
		LastSeenVisibility:  string(u.LastSeenVisibility),
		OnlineStatusVisible: u.OnlineStatusVisible,
	}
}

func StatusModelToDomain(m *StatusModel) *domain.Status {
	if m == nil {
		return nil
	}
	return &domain.Status{
		ID:         m.ID,
		UID:        m.UID,
		UserName:   m.UserName,
		UserPic:    m.UserPic,
		Text:       m.Text,
		ImageURL:   m.ImageURL,
		Background: m.Background,
		Font:       m.Font,
		TextColor:  m.TextColor,
		Song:       m.Song,
		ViewedBy:   m.ViewedBy,
		CreatedAt:  m.CreatedAt,
	}
}

func StatusDomainToModel(s *domain.Status) *StatusModel {
	if s == nil {
		return nil
	}
	return &StatusModel{
		ID:         s.ID,
		UID:        s.UID,
		UserName:   s.UserName,
		UserPic:    s.UserPic,
		Text:       s.Text,
		ImageURL:   s.ImageURL,
		Background: s.Background,
		Font:       s.Font,
		TextColor:  s.TextColor,
		Song:       s.Song,
		ViewedBy:   s.ViewedBy,
		CreatedAt:  s.CreatedAt,
	}
}

func CallModelToDomain(m *CallModel) *domain.CallRecord {
	if m == nil {
		return nil
	}
	return &domain.CallRecord{
		ID:           m.ID,
		CallerID:     m.CallerID,
		CallerName:   m.CallerName,
		CallerPic:    m.CallerPic,
		ReceiverID:   m.ReceiverID,
		ReceiverName: m.ReceiverName,
		ReceiverPic:  m.ReceiverPic,
		Type:         domain.CallType(m.Type),
		Status:       domain.CallStatus(m.Status),
		Duration:     m.Duration,
		Participants: m.Participants,
		CreatedAt:    m.CreatedAt,
	}
}

func CallDomainToModel(c *domain.CallRecord) *CallModel {
	if c == nil {
		return nil
	}
	return &CallModel{
		ID:           c.ID,
		CallerID:     c.CallerID,
		CallerName:   c.CallerName,
		CallerPic:    c.CallerPic,
		ReceiverID:   c.ReceiverID,
		ReceiverName: c.ReceiverName,
		ReceiverPic:  c.ReceiverPic,
		Type:         string(c.Type),
		Status:       string(c.Status),
		Duration:     c.Duration,
		Participants: c.Participants,
		CreatedAt:    c.CreatedAt,
	}
}
