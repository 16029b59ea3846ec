package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

func TestNewSendGridSender(t *testing.T) {
	if s := NewSendGridSender(SendGridConfig{FromEmail: "ops@example.com"}, nil); s != nil {
		t.Fatalf("expected nil sender without API key")
	}

	tests := []struct {
		name     string
		fromName string
		want     string
	}{
		{"default from name", "", defaultFromName},
		{"custom from name", "Northern Executive Cars", "Northern Executive Cars"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSendGridSender(SendGridConfig{APIKey: "key", FromEmail: "ops@example.com", FromName: tt.fromName}, nil)
			if s == nil {
				t.Fatal("expected sender")
			}
			if s.fromName != tt.want {
				t.Fatalf("fromName = %q, want %q", s.fromName, tt.want)
			}
		})
	}
}

func TestSendGridSenderWithoutClient(t *testing.T) {
	err := (&SendGridSender{}).Send(context.Background(), EmailMessage{To: "a@example.com", Subject: "x"})
	if err == nil {
		t.Fatal("expected error when client is nil")
	}
}

func TestStubEmailSender(t *testing.T) {
	if err := NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "a@example.com"}); err != nil {
		t.Fatalf("stub sender returned %v", err)
	}
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSenderBuildsInput(t *testing.T) {
	api := &fakeSES{}
	s := newSESSender(api, SESConfig{FromEmail: "bookings@example.com"}, nil)

	err := s.Send(context.Background(), EmailMessage{
		To:      "john@example.com",
		ReplyTo: "ops@example.com",
		Subject: "Booking received",
		Body:    "Thanks",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := aws.ToString(api.input.FromEmailAddress); got != "VIP Chauffeurs <bookings@example.com>" {
		t.Fatalf("from = %q", got)
	}
	if api.input.Content.Simple.Body.Html != nil || api.input.Content.Simple.Body.Text == nil {
		t.Fatalf("expected text-only body")
	}
	if len(api.input.ReplyToAddresses) != 1 {
		t.Fatalf("reply-to = %v", api.input.ReplyToAddresses)
	}

	api.err = errors.New("throttled")
	if err := s.Send(context.Background(), EmailMessage{To: "john@example.com"}); err == nil {
		t.Fatalf("expected SES error")
	}
}

func TestPlainToHTML(t *testing.T) {
	got := plainToHTML("a < b\nnext")
	if !strings.Contains(got, "a &lt; b<br>next") {
		t.Fatalf("plainToHTML = %q", got)
	}
}
