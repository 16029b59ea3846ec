package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := NewRedisSessionStore(client, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisSessionStore: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	state := NewConversationState("s1", extractorNow)
	state.appendMessage(ChatRoleUser, "my email is a@example.com", extractorNow)
	state.Booking = BookingRecord{CustomerEmail: "a@example.com", PassengerCount: 2}
	state.BookingPersisted = true
	state.BookingID = "b-1"
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if ttl := mr.TTL(sessionKey("s1")); ttl != time.Hour {
		t.Fatalf("ttl = %v, want 1h", ttl)
	}

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Booking != state.Booking || !got.BookingPersisted || got.BookingID != "b-1" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "my email is a@example.com" {
		t.Fatalf("messages mismatch: %+v", got.Messages)
	}
}

func TestRedisSessionStoreCorruptPayload(t *testing.T) {
	mr := miniredis.RunT(t)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := NewRedisSessionStore(client, 0)
	if err != nil {
		t.Fatalf("NewRedisSessionStore: %v", err)
	}
	if err := mr.Set(sessionKey("bad"), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.Load(context.Background(), "bad"); err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestMemorySessionStoreCopies(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	state := NewConversationState("s1", extractorNow)
	state.appendMessage(ChatRoleUser, "hello", extractorNow)
	if err := store.Save(ctx, state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	state.appendMessage(ChatRoleAssistant, "not saved", extractorNow)

	got, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Messages) != 1 {
		t.Fatalf("store aliased caller state: %d messages", len(got.Messages))
	}
	got.Messages[0].Content = "mutated"
	again, _ := store.Load(ctx, "s1")
	if again.Messages[0].Content != "hello" {
		t.Fatalf("store aliased loaded state")
	}

	if err := store.Save(ctx, &ConversationState{}); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("expected ErrEmptySession, got %v", err)
	}
}
