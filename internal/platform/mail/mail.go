package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
	"github.com/yungbote/mentalgym-backend/internal/platform/sendgrid"
)

type Template string

const (
	TemplateBlindSpotTeaser Template = "blind_spot_teaser"
	TemplateWeeklyReport    Template = "weekly_blind_spot_report"
)

// Message is a rendered-template request: the provider owns the markup, the
// caller supplies the content model.
type Message struct {
	To       string
	ToName   string
	Template Template
	Subject  string
	Data     map[string]any
}

// Sender delivers one message and returns the provider message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// NewFromEnv picks the provider named by MAIL_PROVIDER (sendgrid, resend, log).
func NewFromEnv(log *logger.Logger) (Sender, error) {
	switch provider := strings.ToLower(envutil.String("MAIL_PROVIDER", "log")); provider {
	case "sendgrid":
		client, err := sendgrid.New(log, sendgrid.ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		return NewSendGridSender(client, map[Template]string{
			TemplateBlindSpotTeaser: envutil.String("SENDGRID_TEMPLATE_BLIND_SPOT_TEASER", ""),
			TemplateWeeklyReport:    envutil.String("SENDGRID_TEMPLATE_WEEKLY_REPORT", ""),
		}), nil
	case "resend":
		return NewResendSender(ResendConfig{
			APIKey:    envutil.String("RESEND_API_KEY", ""),
			FromEmail: envutil.String("MAIL_FROM_EMAIL", "coach@mentalgym.app"),
			FromName:  envutil.String("MAIL_FROM_NAME", "MentalGym"),
		})
	case "log", "":
		return NewLogSender(log), nil
	default:
		return nil, fmt.Errorf("unknown MAIL_PROVIDER %q", provider)
	}
}

type logSender struct {
	log *logger.Logger
}

// NewLogSender writes messages to the log instead of delivering them.
func NewLogSender(log *logger.Logger) Sender {
	return &logSender{log: log.With("sender", "LogSender")}
}

func (s *logSender) Send(ctx context.Context, msg Message) (string, error) {
	id := fmt.Sprintf("log-%s-%d", msg.Template, len(msg.Data))
	s.log.Info("Mail suppressed (log provider)", "template", string(msg.Template), "subject", msg.Subject, "recipient", msg.To)
	return id, nil
}
