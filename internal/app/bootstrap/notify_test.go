package bootstrap

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"

	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/notify"
	"github.com/vipride/booking-assistant/pkg/logging"
)

func TestBuildEmailSender(t *testing.T) {
	logger := logging.New("error")
	awsCfg := aws.Config{Region: "eu-west-2"}

	tests := []struct {
		name string
		cfg  *appconfig.Config
		want notify.EmailSender
	}{
		{"no from address", &appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "k"}, &notify.StubEmailSender{}},
		{"sendgrid", &appconfig.Config{EmailProvider: "sendgrid", SendGridAPIKey: "k", EmailFrom: "ops@vipride.example"}, &notify.SendGridSender{}},
		{"sendgrid without key", &appconfig.Config{EmailProvider: "sendgrid", EmailFrom: "ops@vipride.example"}, &notify.StubEmailSender{}},
		{"ses", &appconfig.Config{EmailProvider: "ses", EmailFrom: "ops@vipride.example"}, &notify.SESSender{}},
		{"stub", &appconfig.Config{EmailProvider: "stub", EmailFrom: "ops@vipride.example"}, &notify.StubEmailSender{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, BuildEmailSender(tt.cfg, awsCfg, logger))
		})
	}
}
