package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/media"
	"github.com/zivox/zivox/internal/repository"
)

// UserService owns profile documents, presence flags, and settings writes.
// Authentication itself is delegated upstream; sign-in here is the
// create-or-refresh of the profile document.
type UserService struct {
	users repository.UserRepository
	bus   domain.EventBus
	log   zerolog.Logger
}

func NewUserService(users repository.UserRepository, bus domain.EventBus, log zerolog.Logger) *UserService {
	return &UserService{users: users, bus: bus, log: log}
}

// SignIn creates the profile document on first sign-in or refreshes presence
// on subsequent ones, and returns the stored profile.
func (s *UserService) SignIn(ctx context.Context, uid, name, email string) (*domain.User, error) {
	now := time.Now().UTC()

	existing, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if existing == nil {
		if name == "" {
			name = "User"
		}
		user := &domain.User{
			UID:                 uid,
			Name:                name,
			Email:               email,
			OnlineStatus:        true,
			LastSeen:            now,
			LastSeenVisibility:  domain.LastSeenEveryone,
			OnlineStatusVisible: true,
		}
		if err := s.users.Upsert(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.bus.Publish(domain.UserUpdatedEvent{UID: uid, EventTime: now})
		return user, nil
	}

	if err := s.users.SetPresence(ctx, uid, true, now); err != nil {
		return nil, fmt.Errorf("failed to update presence: %w", err)
	}
	existing.OnlineStatus = true
	existing.LastSeen = now

	s.bus.Publish(domain.UserUpdatedEvent{UID: uid, EventTime: now})
	return existing, nil
}

// SignOut flips presence off and stamps lastSeen.
func (s *UserService) SignOut(ctx context.Context, uid string) error {
	now := time.Now().UTC()
	if err := s.users.SetPresence(ctx, uid, false, now); err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	s.bus.Publish(domain.UserUpdatedEvent{UID: uid, EventTime: now})
	return nil
}

// UpdateProfile rewrites name/bio and, when picture bytes are given, runs
// them through the profile-picture transcode before storing inline.
func (s *UserService) UpdateProfile(ctx context.Context, uid, name, bio string, picture []byte) (*domain.User, error) {
	user, err := s.users.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", uid)
	}

	if name != "" {
		user.Name = name
	}
	user.Bio = bio

	if len(picture) > 0 {
		encoded, err := media.EncodeImage(picture, media.ProfileImageOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode profile picture: %w", err)
		}
		user.ProfilePic = encoded
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.bus.Publish(domain.UserUpdatedEvent{UID: uid, EventTime: time.Now().UTC()})
	return user, nil
}

// UpdateSettings writes the privacy settings fields.
func (s *UserService) UpdateSettings(ctx context.Context, uid string, visibility domain.LastSeenVisibility, onlineVisible bool) error {
	switch visibility {
	case domain.LastSeenEveryone, domain.LastSeenContacts, domain.LastSeenNobody:
	default:
		return fmt.Errorf("invalid last-seen visibility: %s", visibility)
	}
	if err := s.users.UpdateSettings(ctx, uid, visibility, onlineVisible); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.bus.Publish(domain.UserUpdatedEvent{UID: uid, EventTime: time.Now().UTC()})
	return nil
}

func (s *UserService) Get(ctx context.Context, uid string) (*domain.User, error) {
	return s.users.GetByUID(ctx, uid)
}

func (s *UserService) Search(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	return s.users.Search(ctx, query, limit)
}
