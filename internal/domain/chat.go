package domain

import "time"

type ChatType string

const (
	ChatTypePrivate ChatType = "private"
	ChatTypeGroup   ChatType = "group"
)

type Chat struct {
	ID              string
	Type            ChatType
	Members         StringSet
	LastMessage     string
	LastMessageTime time.Time
	PinnedBy        StringSet
	MutedBy         StringSet
	CreatedAt       time.Time

	// OtherUser is the counterpart's profile for private chats, resolved by
	// the chat-list subscription. Never persisted.
	OtherUser *User
}

func NewPrivateChat(id, memberA, memberB string, now time.Time) *Chat {
	return &Chat{
		ID:        id,
		Type:      ChatTypePrivate,
		Members:   StringSet{memberA, memberB},
		PinnedBy:  StringSet{},
		MutedBy:   StringSet{},
		CreatedAt: now,
	}
}

func NewGroupChat(id string, members []string, now time.Time) *Chat {
	return &Chat{
		ID:        id,
		Type:      ChatTypeGroup,
		Members:   StringSet(members),
		PinnedBy:  StringSet{},
		MutedBy:   StringSet{},
		CreatedAt: now,
	}
}

// OtherMember returns the counterpart uid of a private chat, or "" when the
// chat is a group or uid is its only listed member.
func (c *Chat) OtherMember(uid string) string {
	if c.Type != ChatTypePrivate {
		return ""
	}
	for _, m := range c.Members {
		if m != uid {
			return m
		}
	}
	return ""
}

func (c *Chat) IsMutedBy(uid string) bool  { return c.MutedBy.Contains(uid) }
func (c *Chat) IsPinnedBy(uid string) bool { return c.PinnedBy.Contains(uid) }
