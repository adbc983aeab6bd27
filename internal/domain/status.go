package domain

import "time"

// StatusTTL is how long a status stays visible after posting. Expiry is a
// query predicate, not a background sweep.
const StatusTTL = 24 * time.Hour

type Status struct {
	ID         string
	UID        string
	UserName   string
	UserPic    string
	Text       string
	ImageURL   string
	Background string
	Font       string
	TextColor  string
	Song       string
	ViewedBy   StringSet
	CreatedAt  time.Time
}

func (s *Status) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) >= StatusTTL
}

// StatusGroup is one owner's visible statuses, oldest first, as the viewer
// pages through them.
type StatusGroup struct {
	UID      string
	UserName string
	UserPic  string
	Statuses []*Status
}

// GroupStatuses buckets statuses by owner preserving the input order of first
// appearance.
func GroupStatuses(statuses []*Status) []*StatusGroup {
	byUID := make(map[string]*StatusGroup)
	var groups []*StatusGroup
	for _, s := range statuses {
		g, ok := byUID[s.UID]
		if !ok {
			g = &StatusGroup{UID: s.UID, UserName: s.UserName, UserPic: s.UserPic}
			byUID[s.UID] = g
			groups = append(groups, g)
		}
		g.Statuses = append(g.Statuses, s)
	}
	return groups
}
