package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/media"
	"github.com/zivox/zivox/internal/repository"
)

// StatusService owns ephemeral status posts. Statuses are created once,
// mutated only by adding viewers, and expire by query predicate 24 hours
// after creation.
type StatusService struct {
	statuses repository.StatusRepository
	users    repository.UserRepository
	bus      domain.EventBus
	log      zerolog.Logger
}

func NewStatusService(statuses repository.StatusRepository, users repository.UserRepository, bus domain.EventBus, log zerolog.Logger) *StatusService {
	return &StatusService{statuses: statuses, users: users, bus: bus, log: log}
}

// StatusDraft carries the display attributes of a new status post.
type StatusDraft struct {
	Text       string
	Image      []byte
	Background string
	Font       string
	TextColor  string
	Song       string
}

// Post creates a status for uid, snapshotting the owner's name and picture.
// Image payloads go through the status-image transcode.
func (s *StatusService) Post(ctx context.Context, uid string, draft StatusDraft) (*domain.Status, error) {
	if strings.TrimSpace(draft.Text) == "" && len(draft.Image) == 0 {
		return nil, fmt.Errorf("status needs text or an image")
	}

	owner, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	var imageURL string
	if len(draft.Image) > 0 {
		imageURL, err = media.EncodeImage(draft.Image, media.StatusImageOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode status image: %w", err)
		}
	}

	now := time.Now().UTC()
	status := &domain.Status{
		ID:         uuid.NewString(),
		UID:        uid,
		UserName:   owner.DisplayName(),
		UserPic:    profilePic(owner),
		Text:       strings.TrimSpace(draft.Text),
		ImageURL:   imageURL,
		Background: draft.Background,
		Font:       draft.Font,
		TextColor:  draft.TextColor,
		Song:       draft.Song,
		ViewedBy:   domain.StringSet{},
		CreatedAt:  now,
	}

	if err := s.statuses.Create(ctx, status); err != nil {
		return nil, fmt.Errorf("failed to create status: %w", err)
	}

	s.bus.Publish(domain.StatusPostedEvent{Status: status, EventTime: now})
	return status, nil
}

// Active returns all statuses inside the 24-hour window, newest first.
func (s *StatusService) Active(ctx context.Context) ([]*domain.Status, error) {
	since := time.Now().UTC().Add(-domain.StatusTTL)
	return s.statuses.GetActiveSince(ctx, since)
}

// ActiveGrouped returns the visible statuses bucketed by owner, with the
// viewer's own statuses split out first.
func (s *StatusService) ActiveGrouped(ctx context.Context, viewerUID string) (mine []*domain.Status, others []*domain.StatusGroup, err error) {
	statuses, err := s.Active(ctx)
	if err != nil {
		return nil, nil, err
	}

	var rest []*domain.Status
	for _, st := range statuses {
		if st.UID == viewerUID {
			mine = append(mine, st)
		} else {
			rest = append(rest, st)
		}
	}
	return mine, domain.GroupStatuses(rest), nil
}

// Subscribe delivers the active status window to fn immediately and again
// after every status write. The returned stop function tears the
// subscription down and waits for the delivery goroutine to exit.
func (s *StatusService) Subscribe(ctx context.Context, fn func([]*domain.Status)) (func(), error) {
	statuses, err := s.Active(ctx)
	if err != nil {
		return nil, err
	}
	fn(statuses)

	events := s.bus.Subscribe([]domain.EventType{
		domain.EventTypeStatusPosted,
		domain.EventTypeStatusViewed,
	})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for range events {
			statuses, err := s.Active(ctx)
			if err != nil {
				s.log.Error().Err(err).Msg("status subscription error")
				return
			}
			fn(statuses)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.bus.Unsubscribe(events)
			<-done
		})
	}, nil
}

// MarkViewed adds the viewer to the status's viewedBy set.
func (s *StatusService) MarkViewed(ctx context.Context, statusID, viewerUID string) error {
	if err := s.statuses.AddViewer(ctx, statusID, viewerUID); err != nil {
		return fmt.Errorf("failed to mark status viewed: %w", err)
	}
	s.bus.Publish(domain.StatusViewedEvent{StatusID: statusID, ViewerID: viewerUID, EventTime: time.Now().UTC()})
	return nil
}

func profilePic(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.ProfilePic
}
