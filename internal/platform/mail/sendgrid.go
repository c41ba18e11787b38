package mail

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/mentalgym-backend/internal/platform/sendgrid"
)

type sendGridSender struct {
	client    sendgrid.Client
	templates map[Template]string
}

// NewSendGridSender maps template names onto SendGrid dynamic template ids.
func NewSendGridSender(client sendgrid.Client, templates map[Template]string) Sender {
	return &sendGridSender{client: client, templates: templates}
}

func (s *sendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	templateID := strings.TrimSpace(s.templates[msg.Template])
	if templateID == "" {
		return "", fmt.Errorf("no sendgrid template configured for %q", msg.Template)
	}
	data := make(map[string]any, len(msg.Data)+1)
	for k, v := range msg.Data {
		data[k] = v
	}
	data["subject"] = msg.Subject
	res, err := s.client.Send(ctx, sendgrid.SendEmailRequest{
		To:                  []sendgrid.EmailAddress{{Email: msg.To, Name: msg.ToName}},
		Subject:             msg.Subject,
		TemplateID:          templateID,
		DynamicTemplateData: data,
		Categories:          []string{string(msg.Template)},
	})
	if err != nil {
		return "", fmt.Errorf("sendgrid send %s: %w", msg.Template, err)
	}
	return res.MessageID, nil
}
