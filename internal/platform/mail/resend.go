package mail

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/resendlabs/resend-go"
)

type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type resendSender struct {
	client *resend.Client
	from   string
	bodies map[Template]*template.Template
}

var resendBodies = map[Template]string{
	TemplateBlindSpotTeaser: `Hi {{.first_name}},

Five sessions in, we spotted {{.blind_spot_count}} blind spot(s) in how you respond.
The biggest one: {{.biggest_gap_label}}.

Upgrade to see the full breakdown: {{.upgrade_url}}
`,
	TemplateWeeklyReport: `Hi {{.first_name}},
{{if .improving}}
Improving: {{join .improving ", "}}{{end}}{{if .needs_work}}
Needs work: {{join .needs_work ", "}}{{end}}{{if .pattern_to_watch}}
Pattern to watch: {{.pattern_to_watch}}{{end}}

This week's focus: {{.weekly_focus}}
{{if .article_title}}
Read next: {{.article_title}} {{.article_url}}{{end}}
`,
}

// NewResendSender renders plain-text bodies locally and sends through Resend.
func NewResendSender(cfg ResendConfig) (Sender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required")
	}
	funcs := template.FuncMap{"join": strings.Join}
	bodies := make(map[Template]*template.Template, len(resendBodies))
	for name, body := range resendBodies {
		tpl, err := template.New(string(name)).Funcs(funcs).Option("missingkey=zero").Parse(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s body: %w", name, err)
		}
		bodies[name] = tpl
	}
	return &resendSender{
		client: resend.NewClient(cfg.APIKey),
		from:   fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		bodies: bodies,
	}, nil
}

func (s *resendSender) Send(ctx context.Context, msg Message) (string, error) {
	text, err := s.render(msg)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    text,
	})
	if err != nil {
		return "", fmt.Errorf("resend send %s: %w", msg.Template, err)
	}
	return resp.Id, nil
}

func (s *resendSender) render(msg Message) (string, error) {
	tpl, ok := s.bodies[msg.Template]
	if !ok {
		return "", fmt.Errorf("no body for template %q", msg.Template)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, msg.Data); err != nil {
		return "", fmt.Errorf("render %s: %w", msg.Template, err)
	}
	return buf.String(), nil
}
