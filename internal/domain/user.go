package domain

import "time"

type LastSeenVisibility string

const (
	LastSeenEveryone LastSeenVisibility = "everyone"
	LastSeenContacts LastSeenVisibility = "contacts"
	LastSeenNobody   LastSeenVisibility = "nobody"
)

type User struct {
	UID                string
	Name               string
	Email              string
	ProfilePic         string
	Bio                string
	OnlineStatus       bool
	LastSeen           time.Time
	LastSeenVisibility LastSeenVisibility
	OnlineStatusVisible bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return "User"
}
