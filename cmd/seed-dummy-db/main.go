package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zivox/zivox/internal/domain"
	"github.com/zivox/zivox/internal/repository"
)

// Seeds a database with a demo account ("me"), contacts, chats with message
// history, a few statuses and a call log. Re-running regenerates messages.
func main() {
	dbPath := "dummy_zivox.db"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	fmt.Printf("Using database at: %s\n", dbPath)

	db, err := initDatabase(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	ctx := context.Background()
	if err := db.WithContext(ctx).Exec("DELETE FROM messages").Error; err != nil {
		log.Fatalf("Failed to delete messages: %v", err)
	}
	fmt.Println("Deleted all messages from database")

	if err := seedDummyData(db); err != nil {
		log.Fatalf("Failed to seed dummy data: %v", err)
	}

	fmt.Println("✅ Successfully seeded the database!")
	fmt.Printf("Database location: %s\n", dbPath)
	fmt.Println("Session user: me")
}

func initDatabase(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	db.Exec("PRAGMA journal_mode=WAL")

	if err := db.AutoMigrate(repository.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func seedDummyData(db *gorm.DB) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()
	now := time.Now()

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	callRepo := repository.NewCallRepository(db)

	contactNames := []string{
		"Alice Johnson",
		"Bob Smith",
		"Charlie Brown",
		"Diana Prince",
		"Eve Wilson",
		"Frank Miller",
		"Grace Lee",
	}

	sampleTexts := []string{
		"Hey! How are you doing?",
		"Just checking in 😊",
		"Can we meet tomorrow?",
		"Thanks for your help!",
		"See you later!",
		"That sounds great!",
		"Let me know when you're free",
		"Perfect! I'll be there",
		"Did you see the latest news?",
		"Have a great day!",
		"What time works for you?",
		"I'll send it over shortly",
		"Thanks for understanding",
		"Looking forward to it!",
		"Let's catch up soon",
	}

	emojis := []string{"👍", "❤️", "😂", "🔥"}

	// The session account plus one account per contact
	me := &domain.User{
		UID:                 "me",
		Name:                "Demo User",
		Email:               "demo@zivox.local",
		Bio:                 "Hey there! I am using ZIVOX.",
		OnlineStatus:        true,
		LastSeen:            now,
		LastSeenVisibility:  domain.LastSeenEveryone,
		OnlineStatusVisible: true,
		CreatedAt:           now,
	}
	if err := userRepo.Upsert(ctx, me); err != nil {
		return fmt.Errorf("failed to create session user: %w", err)
	}

	contactUIDs := make([]string, len(contactNames))
	for i, name := range contactNames {
		uid := fmt.Sprintf("user-%03d", i+1)
		contactUIDs[i] = uid
		user := &domain.User{
			UID:                 uid,
			Name:                name,
			Email:               fmt.Sprintf("user%03d@zivox.local", i+1),
			Bio:                 "Hey there! I am using ZIVOX.",
			OnlineStatus:        rng.Float32() < 0.3,
			LastSeen:            now.Add(-time.Duration(rng.Intn(600)) * time.Minute),
			LastSeenVisibility:  domain.LastSeenEveryone,
			OnlineStatusVisible: true,
			CreatedAt:           now,
		}
		if err := userRepo.Upsert(ctx, user); err != nil {
			return fmt.Errorf("failed to create user %s: %w", uid, err)
		}
	}

	// One private chat with each contact, 20% muted, 30% pinned
	existing, err := chatRepo.GetByMember(ctx, "me")
	if err != nil {
		return fmt.Errorf("failed to load chats: %w", err)
	}

	var chats []*domain.Chat
	if len(existing) > 0 {
		fmt.Printf("Found %d existing chats, will regenerate messages for them\n", len(existing))
		chats = existing
	} else {
		fmt.Println("No existing chats found, creating new chats...")
		for _, uid := range contactUIDs {
			chat := domain.NewPrivateChat(uuid.New().String(), "me", uid, now)
			if rng.Float32() < 0.2 {
				chat.MutedBy = domain.StringSet{"me"}
			}
			if rng.Float32() < 0.3 {
				chat.PinnedBy = domain.StringSet{"me"}
			}
			if err := chatRepo.Create(ctx, chat); err != nil {
				return fmt.Errorf("failed to create chat with %s: %w", uid, err)
			}
			chats = append(chats, chat)
		}
	}

	for _, chat := range chats {
		other := chat.OtherMember("me")

		// 10-15 messages per chat, oldest first, 10-60 minute spacing
		numMessages := 10 + rng.Intn(6)
		daysAgo := 1 + rng.Intn(3)
		messageTime := now.Add(-time.Duration(daysAgo) * 24 * time.Hour)

		var last *domain.Message
		for j := 0; j < numMessages; j++ {
			if j > 0 {
				messageTime = messageTime.Add(time.Duration(10+rng.Intn(50)) * time.Minute)
				if messageTime.After(now) {
					messageTime = now.Add(-time.Duration(rng.Intn(30)) * time.Minute)
				}
			}

			sender := "me"
			if rng.Float32() < 0.5 {
				sender = other
			}

			text := sampleTexts[rng.Intn(len(sampleTexts))]
			msg := domain.NewTextMessage(uuid.New().String(), chat.ID, sender, text, messageTime)
			if err := msgRepo.Create(ctx, msg); err != nil {
				return fmt.Errorf("failed to create message: %w", err)
			}

			// Sprinkle reactions and read receipts on older messages
			if j < numMessages-2 {
				if err := msgRepo.AddSeenBy(ctx, msg.ID, other); err != nil {
					return err
				}
				if err := msgRepo.AddSeenBy(ctx, msg.ID, "me"); err != nil {
					return err
				}
			}
			if rng.Float32() < 0.15 {
				reactor := "me"
				if sender == "me" {
					reactor = other
				}
				if err := msgRepo.SetReaction(ctx, msg.ID, reactor, emojis[rng.Intn(len(emojis))]); err != nil {
					return err
				}
			}

			last = msg
		}

		if last != nil {
			if err := chatRepo.UpdatePreview(ctx, chat.ID, last.Text, last.Timestamp); err != nil {
				return fmt.Errorf("failed to update preview: %w", err)
			}
		}
	}

	// A few fresh statuses from contacts plus one of mine
	for i := 0; i < 3; i++ {
		owner := contactUIDs[rng.Intn(len(contactUIDs))]
		ownerUser, err := userRepo.GetByUID(ctx, owner)
		if err != nil {
			return err
		}
		status := &domain.Status{
			ID:        uuid.New().String(),
			UID:       owner,
			UserName:  ownerUser.DisplayName(),
			Text:      sampleTexts[rng.Intn(len(sampleTexts))],
			ViewedBy:  domain.StringSet{},
			CreatedAt: now.Add(-time.Duration(rng.Intn(20)) * time.Hour),
		}
		if err := statusRepo.Create(ctx, status); err != nil {
			return fmt.Errorf("failed to create status: %w", err)
		}
	}
	myStatus := &domain.Status{
		ID:        uuid.New().String(),
		UID:       "me",
		UserName:  me.DisplayName(),
		Text:      "Trying out ZIVOX",
		ViewedBy:  domain.StringSet{contactUIDs[0]},
		CreatedAt: now.Add(-2 * time.Hour),
	}
	if err := statusRepo.Create(ctx, myStatus); err != nil {
		return fmt.Errorf("failed to create status: %w", err)
	}

	// Call history
	callTypes := []domain.CallType{domain.CallTypeVoice, domain.CallTypeVideo}
	callStatuses := []domain.CallStatus{domain.CallStatusOutgoing, domain.CallStatusIncoming, domain.CallStatusMissed}
	for i := 0; i < 5; i++ {
		otherUID := contactUIDs[rng.Intn(len(contactUIDs))]
		otherUser, err := userRepo.GetByUID(ctx, otherUID)
		if err != nil {
			return err
		}

		callerID, callerName := "me", me.DisplayName()
		receiverID, receiverName := otherUID, otherUser.DisplayName()
		status := callStatuses[rng.Intn(len(callStatuses))]
		if status == domain.CallStatusIncoming || status == domain.CallStatusMissed {
			callerID, receiverID = receiverID, callerID
			callerName, receiverName = receiverName, callerName
		}

		call := &domain.CallRecord{
			ID:           uuid.New().String(),
			CallerID:     callerID,
			CallerName:   callerName,
			ReceiverID:   receiverID,
			ReceiverName: receiverName,
			Type:         callTypes[rng.Intn(len(callTypes))],
			Status:       status,
			Duration:     rng.Intn(600),
			Participants: domain.StringSet{callerID, receiverID},
			CreatedAt:    now.Add(-time.Duration(rng.Intn(72)) * time.Hour),
		}
		if err := callRepo.Create(ctx, call); err != nil {
			return fmt.Errorf("failed to create call record: %w", err)
		}
	}

	return nil
}
