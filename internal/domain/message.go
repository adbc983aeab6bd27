package domain

import "time"

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// PreviewLabel is the fixed chat-preview text used for a media message in
// place of its payload.
func (t MediaType) PreviewLabel() string {
	switch t {
	case MediaTypeImage:
		return "📷 Photo"
	case MediaTypeVideo:
		return "🎥 Video"
	case MediaTypeAudio:
		return "🎤 Voice message"
	}
	return "📎 Attachment"
}

type Message struct {
	ID                 string
	ChatID             string
	SenderID           string
	Text               string
	MediaURL           string
	MediaType          MediaType
	ReplyTo            string
	SeenBy             StringSet
	DeliveredTo        StringSet
	Reactions          ReactionMap
	Edited             bool
	DeletedForEveryone bool
	Timestamp          time.Time
}

func NewTextMessage(id, chatID, senderID, text string, timestamp time.Time) *Message {
	return &Message{
		ID:          id,
		ChatID:      chatID,
		SenderID:    senderID,
		Text:        text,
		SeenBy:      StringSet{senderID},
		DeliveredTo: StringSet{senderID},
		Reactions:   ReactionMap{},
		Timestamp:   timestamp,
	}
}

func NewMediaMessage(id, chatID, senderID, mediaURL string, mediaType MediaType, timestamp time.Time) *Message {
	return &Message{
		ID:          id,
		ChatID:      chatID,
		SenderID:    senderID,
		MediaURL:    mediaURL,
		MediaType:   mediaType,
		SeenBy:      StringSet{senderID},
		DeliveredTo: StringSet{senderID},
		Reactions:   ReactionMap{},
		Timestamp:   timestamp,
	}
}

// Tombstone clears displayable content while keeping identity and position.
func (m *Message) Tombstone() {
	m.DeletedForEveryone = true
	m.Text = ""
	m.MediaURL = ""
}
