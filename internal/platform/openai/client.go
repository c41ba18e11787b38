package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
	"github.com/yungbote/mentalgym-backend/internal/platform/httpx"
	"github.com/yungbote/mentalgym-backend/internal/platform/logger"
)

// Client is the model API surface the backend uses.
type Client interface {
	// GenerateJSON runs a structured-output request and decodes the reply into out.
	GenerateJSON(ctx context.Context, req JSONRequest, out any) error
}

type JSONRequest struct {
	Instructions string
	Input        string
	SchemaName   string
	Schema       map[string]any
	MaxTokens    int64
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("OPENAI_API_KEY", ""),
		BaseURL:    envutil.String("OPENAI_BASE_URL", ""),
		Model:      envutil.String("OPENAI_MODEL", "gpt-4.1-mini"),
		Timeout:    envutil.Duration("OPENAI_TIMEOUT", 60*time.Second),
		MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 3),
	}
}

type client struct {
	log        *logger.Logger
	api        *openai.Client
	model      string
	maxRetries int
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Retries are handled here so they respect ctx and log.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	api := openai.NewClient(opts...)
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &client{
		log:        log.With("service", "OpenAIClient"),
		api:        &api,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
	}, nil
}

func (c *client) GenerateJSON(ctx context.Context, req JSONRequest, out any) error {
	if req.SchemaName == "" || req.Schema == nil {
		return fmt.Errorf("schema required")
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(maxTokens),
		Instructions:    openai.String(req.Instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := c.callWithRetry(ctx, params)
	if err != nil {
		return err
	}
	if err := decodeModelJSON(resp.OutputText(), out); err != nil {
		return fmt.Errorf("decode %s: %w", req.SchemaName, err)
	}
	return nil
}

func (c *client) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.api.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.maxRetries {
			break
		}
		sleepFor := httpx.JitterSleep(time.Duration(1<<attempt) * time.Second)
		c.log.Warn("OpenAI request failed; retrying", "attempt", attempt+1, "sleep", sleepFor.String(), "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepFor):
		}
	}
	return nil, fmt.Errorf("openai responses: %w", lastErr)
}

func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return httpx.IsRetryableHTTPStatus(apiErr.StatusCode)
	}
	return httpx.IsRetryableError(err)
}

// decodeModelJSON tolerates prose around the JSON object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}
	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end <= start {
		return fmt.Errorf("no JSON object in model output (len=%d)", len(s))
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}
