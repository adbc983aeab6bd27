package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/repository"
)

// CallService owns the call-history log. Names and pictures are snapshotted
// at record time so history survives later profile edits.
type CallService struct {
	calls repository.CallRepository
	users repository.UserRepository
	bus   domain.EventBus
	log   zerolog.Logger
}

func NewCallService(calls repository.CallRepository, users repository.UserRepository, bus domain.EventBus, log zerolog.Logger) *CallService {
	return &CallService{calls: calls, users: users, bus: bus, log: log}
}

// Record logs one finished call between caller and receiver.
func (s *CallService) Record(ctx context.Context, callerID, receiverID string, callType domain.CallType, status domain.CallStatus, durationSeconds int) (*domain.CallRecord, error) {
	caller, err := s.users.GetByUID(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load caller: %w", err)
	}
	receiver, err := s.users.GetByUID(ctx, receiverID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receiver: %w", err)
	}

	now := time.Now().UTC()
	call := &domain.CallRecord{
		ID:           uuid.NewString(),
		CallerID:     callerID,
		CallerName:   caller.DisplayName(),
		CallerPic:    profilePic(caller),
		ReceiverID:   receiverID,
		ReceiverName: receiver.DisplayName(),
		ReceiverPic:  profilePic(receiver),
		Type:         callType,
		Status:       status,
		Duration:     durationSeconds,
		Participants: domain.StringSet{callerID, receiverID},
		CreatedAt:    now,
	}

	if err := s.calls.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("failed to log call: %w", err)
	}

	s.bus.Publish(domain.CallLoggedEvent{Call: call, EventTime: now})
	return call, nil
}

// Subscribe delivers uid's call history to fn immediately and again after
// every call-log write. The returned stop function tears the subscription
// down and waits for the delivery goroutine to exit.
func (s *CallService) Subscribe(ctx context.Context, uid string, fn func([]*domain.CallRecord)) (func(), error) {
	history, err := s.History(ctx, uid)
	if err != nil {
		return nil, err
	}
	fn(history)

	events := s.bus.Subscribe([]domain.EventType{
		domain.EventTypeCallLogged,
		domain.EventTypeCallDeleted,
	})
	done := make(chan struct{})

	go func() {
		defer close(done)
		for range events {
			history, err := s.History(ctx, uid)
			if err != nil {
				s.log.Error().Err(err).Str("uid", uid).Msg("call subscription error")
				return
			}
			fn(history)
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

// History returns uid's call records, newest first.
func (s *CallService) History(ctx context.Context, uid string) ([]*domain.CallRecord, error) {
	return s.calls.GetByParticipant(ctx, uid)
}

// Delete removes one record from the history.
func (s *CallService) Delete(ctx context.Context, id string) error {
	if err := s.calls.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete call record: %w", err)
	}
	s.bus.Publish(domain.CallDeletedEvent{CallID: id, EventTime: time.Now().UTC()})
	return nil
}
