package bootstrap

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	appconfig "github.com/vipride/booking-assistant/internal/config"
	"github.com/vipride/booking-assistant/internal/notify"
	"github.com/vipride/booking-assistant/pkg/logging"
)

// BuildEmailSender selects the outbound email provider from EMAIL_PROVIDER. Misconfigured
// providers degrade to the stub sender so bookings are never blocked on email.
func BuildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil || cfg.EmailFrom == "" {
		logger.Warn("EMAIL_FROM not set; email notifications disabled")
		return notify.NewStubEmailSender(logger)
	}

	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger); sender != nil {
			logger.Info("using sendgrid email sender")
			return sender
		}
		logger.Warn("SENDGRID_API_KEY not set; email notifications disabled")
	case "ses":
		sender := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.EmailFrom,
			FromName:  cfg.EmailFromName,
		}, logger)
		logger.Info("using SES email sender", "region", awsCfg.Region)
		return sender
	}
	return notify.NewStubEmailSender(logger)
}

// BuildNotifier wraps the sender with booking and lead templates.
func BuildNotifier(cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) *notify.Service {
	return notify.NewService(sender, notify.Config{
		BusinessName: cfg.BusinessName,
		OpsEmail:     cfg.OpsNotifyEmail,
		ContactPhone: cfg.ContactPhone,
		ContactEmail: cfg.ContactEmail,
	}, logger)
}
