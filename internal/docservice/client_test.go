package docservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.Timeout = 2 * time.Second

	client, err := New(config, nil)
	require.NoError(t, err)
	return client
}

func testDocument() *Document {
	return NewDocument("notes.pdf", []byte("%PDF-1.4 test content"))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, true},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"negative health timeout", func(c *Config) { c.HealthTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcess_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/process", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(HeaderRequestID))
		assert.Equal(t, "session-1", r.Header.Get(HeaderSessionID))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "notes.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))
		assert.Equal(t, "%PDF-1.4 test content", string(content))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"summary":   "S",
			"questions": []string{"Q1", "Q2"},
			"filename":  "notes.pdf",
		})
	})

	ctx := WithSessionID(context.Background(), "session-1")
	result, err := client.Process(ctx, testDocument())
	require.NoError(t, err)

	assert.Equal(t, "S", result.Summary)
	assert.Equal(t, []string{"Q1", "Q2"}, result.Questions)
	assert.Equal(t, "notes.pdf", result.Filename)
	assert.True(t, result.HasSummary())
}

func TestProcess_OptionalFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	result, err := client.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.False(t, result.HasSummary())
	assert.Empty(t, result.Questions)
}

func TestProcess_ErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    ErrorKind
		wantMessage string
	}{
		{
			name:        "string detail",
			status:      http.StatusRequestEntityTooLarge,
			body:        `{"detail":"File too large. Maximum size is 25MB"}`,
			wantKind:    KindServer,
			wantMessage: "File too large. Maximum size is 25MB",
		},
		{
			name:        "validation list detail",
			status:      http.StatusUnprocessableEntity,
			body:        `{"detail":[{"loc":["body","file"],"msg":"field required","type":"value_error.missing"}]}`,
			wantKind:    KindServer,
			wantMessage: "field required",
		},
		{
			name:        "no detail",
			status:      http.StatusInternalServerError,
			body:        `Internal Server Error`,
			wantKind:    KindMalformed,
			wantMessage: MsgProcessFailed,
		},
		{
			name:        "empty detail",
			status:      http.StatusBadGateway,
			body:        `{"detail":""}`,
			wantKind:    KindMalformed,
			wantMessage: MsgProcessFailed,
		},
		{
			name:        "malformed success body",
			status:      http.StatusOK,
			body:        `not json`,
			wantKind:    KindMalformed,
			wantMessage: MsgUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Process(context.Background(), testDocument())
			require.Error(t, err)

			var derr *Error
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.wantKind, derr.Kind)
			assert.Equal(t, tt.wantMessage, derr.UserMessage())
			assert.Equal(t, OpProcess, derr.Op)
		})
	}
}

func TestProcess_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.Timeout = 50 * time.Millisecond

	client, err := New(config, nil)
	require.NoError(t, err)

	_, err = client.Process(context.Background(), testDocument())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, MsgTimeout, MessageOf(err))
}

func TestProcess_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	config := DefaultConfig()
	config.BaseURL = url
	client, err := New(config, nil)
	require.NoError(t, err)

	_, err = client.Process(context.Background(), testDocument())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, MsgNetwork, MessageOf(err))
}

func TestAsk_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ask", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Explain Topic A", r.FormValue("question"))

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "%PDF-1.4 test content", string(content))

		_, _ = w.Write([]byte(`{"answer":"Topic A is ..."}`))
	})

	answer, err := client.Ask(context.Background(), testDocument(), "  Explain Topic A  ")
	require.NoError(t, err)
	assert.Equal(t, "Topic A is ...", answer.Answer)
}

func TestAsk_MissingAnswerIsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	_, err := client.Ask(context.Background(), testDocument(), "What?")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Equal(t, MsgUnknown, MessageOf(err))
}

func TestAsk_FallbackMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Ask(context.Background(), testDocument(), "What?")
	require.Error(t, err)
	assert.Equal(t, MsgAskFailed, MessageOf(err))
}

func TestAsk_ValidationSendsNothing(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.Ask(context.Background(), testDocument(), "   ")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = client.Ask(context.Background(), nil, "What?")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = client.Process(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrValidation))

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"healthy","message":"API is running","has_api_key":true}`))
	})

	health, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.HasAPIKey)
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Kind: KindServer, Op: OpProcess, StatusCode: 400, Message: "File must be a PDF"}
	assert.Equal(t, "op=process: kind=server: status=400: File must be a PDF", err.Error())

	assert.Equal(t, MsgUnknown, MessageOf(errors.New("boom")))
	assert.Equal(t, "", MessageOf(nil))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
}

func TestLoadDocument(t *testing.T) {
	path := t.TempDir() + "/Report.PDF"
	require.NoError(t, writeFile(path, []byte("data")))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, "Report.PDF", doc.Name)
	assert.Equal(t, int64(4), doc.Size)
	assert.True(t, doc.IsPDF())

	_, err = LoadDocument(path + ".missing")
	assert.Error(t, err)
}
