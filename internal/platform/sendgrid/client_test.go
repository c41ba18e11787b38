package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

func TestSendTemplateRetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer header")
		}
		if n == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		var body mailSendRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.TemplateID != "d-123" || body.Personalizations[0].DynamicTemplateData["first_name"] != "Ada" {
			t.Errorf("unexpected body: %+v", body)
		}
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := New(logger.NewNop(), Config{APIKey: "key", BaseURL: srv.URL, DefaultFromEmail: "hi@mentalgym.app", MaxRetries: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := c.Send(context.Background(), SendEmailRequest{
		To:                  []EmailAddress{{Email: "ada@example.com"}},
		Subject:             "Your week",
		TemplateID:          "d-123",
		DynamicTemplateData: map[string]any{"first_name": "Ada"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg-1" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("unexpected result %+v after %d calls", res, calls)
	}
}

func TestSendRejectsMissingContent(t *testing.T) {
	c, err := New(logger.NewNop(), Config{APIKey: "key", DefaultFromEmail: "hi@mentalgym.app"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "a@b.c"}}})
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
