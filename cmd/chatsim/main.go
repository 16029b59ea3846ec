// Command chatsim runs the booking assistant in a terminal with in-memory stores.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vipride/booking-assistant/cmd/mainconfig"
	"github.com/vipride/booking-assistant/internal/app/bootstrap"
	"github.com/vipride/booking-assistant/internal/bookings"
	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/conversation"
	"github.com/vipride/booking-assistant/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := appconfig.Load()
	logger := logging.New("warn")
	ctx := context.Background()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}
	llm, closeLLM, err := bootstrap.BuildLLMClient(ctx, cfg, awsCfg, logger)
	if err != nil {
		log.Fatalf("llm: %v", err)
	}
	defer closeLLM()

	bookingRepo := bookings.NewInMemoryRepository()
	assistant, err := bootstrap.BuildAssistant(cfg, bootstrap.AssistantDeps{
		LLM:      llm,
		Sessions: conversation.NewMemorySessionStore(),
		Bookings: conversation.BookingServiceAdapter{Service: bookings.NewService(bookingRepo, nil, logger)},
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("assistant: %v", err)
	}

	if err := simulate(ctx, assistant, bufio.NewScanner(os.Stdin), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

// simulate reads customer lines until EOF or /quit and prints each reply with the fields still missing.
func simulate(ctx context.Context, svc *conversation.Assistant, in *bufio.Scanner, out io.Writer) error {
	start, err := svc.StartSession(ctx, conversation.StartRequest{})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	fmt.Fprintf(out, "session %s\nassistant> %s\n", start.SessionID, start.Response)

	for {
		fmt.Fprint(out, "you> ")
		if !in.Scan() {
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/state":
			state, err := svc.Session(ctx, start.SessionID)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fields := state.Booking.Fields()
			names := make([]string, 0, len(fields))
			for field := range fields {
				names = append(names, field)
			}
			sort.Strings(names)
			for _, field := range names {
				fmt.Fprintf(out, "  %s: %s\n", conversation.FieldLabel(field), fields[field])
			}
			continue
		}

		res, err := svc.ProcessMessage(ctx, conversation.MessageRequest{SessionID: start.SessionID, Message: line})
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "assistant> %s\n", res.Response)
		fmt.Fprintf(out, "  [mode=%s missing=%s", res.Mode, strings.Join(res.MissingFields, ","))
		if res.BookingReady {
			fmt.Fprintf(out, " booking=%s", res.BookingID)
		}
		fmt.Fprintln(out, "]")
	}
}
