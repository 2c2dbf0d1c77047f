package bootstrap

import (
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/fahimkhan-git/seher-ai-chat/internal/archive"
	appconfig "github.com/fahimkhan-git/seher-ai-chat/internal/config"
	"github.com/fahimkhan-git/seher-ai-chat/internal/events"
	"github.com/fahimkhan-git/seher-ai-chat/internal/leads"
	"github.com/fahimkhan-git/seher-ai-chat/internal/notify"
	"github.com/fahimkhan-git/seher-ai-chat/pkg/logging"
)

// BuildEmailSender prefers SendGrid, then SES, then a sender that only logs.
// The returned string names the provider for startup logs.
func BuildEmailSender(cfg *appconfig.Config, ses *sesv2.Client, logger *logging.Logger) (notify.EmailSender, string) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg == nil {
		return notify.NewLogSender(logger), "log"
	}
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    strings.TrimSpace(cfg.SendGridAPIKey),
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		return sg, "sendgrid"
	}
	if ses != nil && strings.TrimSpace(cfg.SESFromEmail) != "" {
		return notify.NewSESSender(ses, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger), "ses"
	}
	return notify.NewLogSender(logger), "log"
}

// BuildNotifier returns nil when there is nobody to email.
func BuildNotifier(cfg *appconfig.Config, sender notify.EmailSender, logger *logging.Logger) leads.Notifier {
	if cfg == nil || sender == nil {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	var opts []notify.Option
	if tz := strings.TrimSpace(cfg.NotifyTimezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			logger.Warn("invalid notify timezone, using UTC", "timezone", tz, "error", err)
		} else {
			opts = append(opts, notify.WithLocation(loc))
		}
	}
	svc := notify.NewService(sender, cfg.LeadNotifyEmails, logger, opts...)
	if !svc.Enabled() {
		return nil
	}
	return svc
}

// BuildArchiver returns nil unless a bucket and an S3 client are available.
// The Bedrock client is optional and only used for transcript labels.
func BuildArchiver(cfg *appconfig.Config, s3Client *s3.Client, bedrock *bedrockruntime.Client, logger *logging.Logger) leads.Archiver {
	if cfg == nil || s3Client == nil || strings.TrimSpace(cfg.ArchiveBucket) == "" {
		return nil
	}
	store := archive.NewStore(s3Client, cfg.ArchiveBucket, logger)
	var classifier *archive.Classifier
	if bedrock != nil && strings.TrimSpace(cfg.ArchiveLabelModelID) != "" {
		classifier = archive.NewClassifier(bedrock, cfg.ArchiveLabelModelID)
	} else {
		classifier = archive.NewClassifier(nil, "")
	}
	a := archive.NewArchiver(store, classifier, logger)
	if a == nil {
		return nil
	}
	return a
}

// BuildEventPublisher dials the broker when AMQP_URL is set. A failed dial
// is logged and leaves publishing disabled.
func BuildEventPublisher(cfg *appconfig.Config, logger *logging.Logger) *events.AMQPPublisher {
	if cfg == nil || strings.TrimSpace(cfg.AMQPURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pub, err := events.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, logger)
	if err != nil {
		logger.Warn("event broker unavailable; publishing disabled", "error", err)
		return nil
	}
	logger.Info("event broker connected", "exchange", cfg.AMQPExchange)
	return pub
}
