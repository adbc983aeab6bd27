package domain

import "time"

type CallType string

const (
	CallTypeVoice CallType = "voice"
	CallTypeVideo CallType = "video"
)

type CallStatus string

const (
	CallStatusOutgoing CallStatus = "outgoing"
	CallStatusIncoming CallStatus = "incoming"
	CallStatusMissed   CallStatus = "missed"
)

// CallRecord is a call-history row. Caller/receiver names and pictures are
// snapshots taken at call time, not live-joined against the user documents.
type CallRecord struct {
	ID           string
	CallerID     string
	CallerName   string
	CallerPic    string
	ReceiverID   string
	ReceiverName string
	ReceiverPic  string
	Type         CallType
	Status       CallStatus
	Duration     int
	Participants StringSet
	CreatedAt    time.Time
}
