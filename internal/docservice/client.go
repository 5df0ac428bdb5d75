package docservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/DocSum/internal/logger"
)

// Request headers sent with every call
const (
	HeaderRequestID = "X-Request-ID"
	HeaderSessionID = "X-Session-ID"
)

// maxErrorBody bounds how much of a failed response is read
const maxErrorBody = 1 << 20

// Config holds Document Service client configuration
type Config struct {
	// BaseURL is the Document Service root, e.g. http://localhost:8000
	BaseURL string `json:"base_url"`

	// Timeout bounds each /process and /ask request
	Timeout time.Duration `json:"timeout"`

	// HealthTimeout bounds the health probe
	HealthTimeout time.Duration `json:"health_timeout"`
}

// DefaultConfig returns a default client configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       "http://localhost:8000",
		Timeout:       120 * time.Second,
		HealthTimeout: 5 * time.Second,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("document service base URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("document service timeout must be positive")
	}
	if c.HealthTimeout <= 0 {
		return fmt.Errorf("document service health timeout must be positive")
	}
	return nil
}

// Client talks to the Document Service over HTTP
type Client struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	log     *logger.Logger
}

// New creates a Document Service client
func New(config *Config, log *logger.Logger) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid document service base URL: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		config:  config,
		client:  &http.Client{},
		baseURL: baseURL,
		log:     log.WithComponent("docservice"),
	}, nil
}

// BaseURL returns the configured service root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Process uploads a document to /process
func (c *Client) Process(ctx context.Context, doc *Document) (*Summary, error) {
	if doc == nil {
		return nil, NewValidationError(OpProcess, MsgNoFile)
	}

	body, contentType, err := encodeForm(doc, nil)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: OpProcess, Message: MsgNoFile, Cause: err}
	}

	data, err := c.post(ctx, OpProcess, "/process", body, contentType, MsgProcessFailed)
	if err != nil {
		return nil, err
	}

	var result Summary
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: OpProcess, Message: MsgUnknown, Cause: err}
	}

	return &result, nil
}

// Ask sends the document and a question to /ask
func (c *Client) Ask(ctx context.Context, doc *Document, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, NewValidationError(OpAsk, MsgEmptyQuestion)
	}
	if doc == nil {
		return nil, NewValidationError(OpAsk, MsgNoFile)
	}

	body, contentType, err := encodeForm(doc, map[string]string{"question": question})
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: OpAsk, Message: MsgNoFile, Cause: err}
	}

	data, err := c.post(ctx, OpAsk, "/ask", body, contentType, MsgAskFailed)
	if err != nil {
		return nil, err
	}

	var result answerResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: OpAsk, Message: MsgUnknown, Cause: err}
	}
	if result.Answer == nil {
		return nil, &Error{Kind: KindMalformed, Op: OpAsk, Message: MsgUnknown}
	}

	return &Answer{Answer: *result.Answer}, nil
}

// Health probes GET /health
func (c *Client) Health(ctx context.Context) (*Health, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.HealthTimeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath("/health")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: OpHealth, Message: MsgNetwork, Cause: err}
	}
	c.setHeaders(ctx, req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, transportError(OpHealth, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, statusError(OpHealth, resp.StatusCode, data, fmt.Sprintf("health check failed with status %d", resp.StatusCode))
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, &Error{Kind: KindMalformed, Op: OpHealth, Message: MsgUnknown, Cause: err}
	}

	return &health, nil
}

// post sends a multipart form and returns the body of a 2xx response
func (c *Client) post(ctx context.Context, op, path string, body *bytes.Buffer, contentType, fallback string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Message: MsgNetwork, Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	requestID := c.setHeaders(ctx, req)

	log := c.log.With(logger.F("op", op), logger.F("request_id", requestID))
	start := time.Now()
	log.Debug("Sending request", logger.F("url", endpoint.String()), logger.F("bytes", body.Len()))

	resp, err := c.client.Do(req)
	if err != nil {
		derr := transportError(op, err)
		log.Warn("Request failed", logger.F("kind", string(derr.Kind)), logger.Duration(time.Since(start)), logger.Error(err))
		return nil, derr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		derr := statusError(op, resp.StatusCode, data, fallback)
		log.Warn("Service returned an error",
			logger.F("status", resp.StatusCode),
			logger.F("kind", string(derr.Kind)),
			logger.F("detail", derr.Message),
			logger.Duration(time.Since(start)))
		return nil, derr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		derr := transportError(op, err)
		log.Warn("Failed to read response", logger.Duration(time.Since(start)), logger.Error(err))
		return nil, derr
	}

	log.Info("Request completed", logger.F("status", resp.StatusCode), logger.Duration(time.Since(start)))
	return data, nil
}

// setHeaders stamps the request and session identifiers and returns the request ID
func (c *Client) setHeaders(ctx context.Context, req *http.Request) string {
	requestID := uuid.New().String()
	req.Header.Set(HeaderRequestID, requestID)
	if sessionID := SessionIDFrom(ctx); sessionID != "" {
		req.Header.Set(HeaderSessionID, sessionID)
	}
	return requestID
}

// encodeForm writes the document as the "file" part followed by extra fields
func encodeForm(doc *Document, fields map[string]string) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, doc.Name))
	header.Set("Content-Type", "application/pdf")

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return nil, "", fmt.Errorf("failed to write file part: %w", err)
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

type sessionIDKey struct{}

// WithSessionID attaches a session identifier that is sent as X-Session-ID
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFrom returns the session identifier carried by ctx
func SessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}
