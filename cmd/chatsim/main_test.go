package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/pkg/logging"
)

func TestSimulateCompletesBooking(t *testing.T) {
	contact := conversation.ContactInfo{BusinessName: "VIP Chauffeurs", Phone: "0161 496 0000"}
	assistant, err := conversation.NewAssistant(conversation.AssistantConfig{
		Replies:  conversation.NewReplyOrchestrator(nil, contact, logging.New("error")),
		Sessions: conversation.NewMemorySessionStore(),
		Bookings: conversation.BookingStoreFunc(func(context.Context, string, conversation.BookingRecord) (string, bool, error) {
			return "sim-1", true, nil
		}),
		Contact: contact,
		Logger:  logging.New("error"),
	})
	if err != nil {
		t.Fatalf("new assistant: %v", err)
	}

	input := strings.Join([]string{
		"Hi, I'm John Smith, my email is john@x.com, phone 07700 900123",
		"/state",
		"I need an airport transfer for 3 passengers on 20/06/2030 at 5pm from Manchester Airport to city centre",
		"/quit",
		"never read",
	}, "\n")
	var out bytes.Buffer
	if err := simulate(context.Background(), assistant, bufio.NewScanner(strings.NewReader(input)), &out); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Hello and welcome to VIP Chauffeurs", "name: John Smith", "booking=sim-1"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}
