package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/DocSum/internal/auth"
	"github.com/yildizm/DocSum/internal/docservice"
	"github.com/yildizm/DocSum/internal/formatter"
)

// testEnv is a config file pointing at fake services inside a temp dir
type testEnv struct {
	dir        string
	configPath string
	credsPath  string
}

type envOptions struct {
	serviceURL   string
	identityURL  string
	emailjsURL   string
	authRequired bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "docsum.yaml"),
		credsPath:  filepath.Join(dir, "credentials.json"),
	}

	if opts.serviceURL == "" {
		opts.serviceURL = "http://127.0.0.1:1"
	}
	if opts.identityURL == "" {
		opts.identityURL = "http://127.0.0.1:1"
	}
	if opts.emailjsURL == "" {
		opts.emailjsURL = "http://127.0.0.1:1"
	}

	content := fmt.Sprintf(`
service:
  base_url: %s
  timeout: 5s
  cache_ttl: 0s
auth:
  required: %t
  api_key: test-key
  identity_url: %s
  token_url: %s
  credentials_path: %s
contact:
  provider: emailjs
  to_email: team@example.com
  emailjs:
    endpoint: %s
    service_id: svc
    template_id: tpl
    public_key: pub
output:
  color_mode: never
log:
  file: %s
  level: debug
`, opts.serviceURL, opts.authRequired, opts.identityURL, opts.identityURL, env.credsPath, opts.emailjsURL,
		filepath.Join(dir, "docsum.log"))

	require.NoError(t, os.WriteFile(env.configPath, []byte(content), 0o600))
	return env
}

// signIn stores credentials for a user directly
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	store := auth.NewFileStore(e.credsPath, nil)
	require.NoError(t, store.Save(&auth.Credentials{
		IDToken: testToken(t, time.Now().Add(time.Hour)),
		Email:   "ada@example.com",
	}))
}

func (e *testEnv) writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7 test"), 0o600))
	return path
}

func testToken(t *testing.T, expires time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":        "uid-1",
		"email":          "ada@example.com",
		"name":           "Ada",
		"email_verified": true,
		"exp":            expires.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("NO_COLOR", "1")

	root := NewRootCommand("1.2.3", "abc123", "2026-01-01")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--no-emoji"))

	err := root.Execute()
	return out.String(), err
}

func newDocumentService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		_ = file.Close()

		w.Header().Set("Content-Type", "application/json")

		if header.Filename == "huge.pdf" {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = io.WriteString(w, `{"detail":"File too large"}`)
			return
		}

		switch r.URL.Path {
		case "/process":
			_, _ = io.WriteString(w, `{"summary":"Topic A. Topic B.","questions":["What is Topic A?"]}`)
		case "/ask":
			_, _ = fmt.Fprintf(w, `{"answer":"About %s"}`, r.FormValue("question"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "DocSum 1.2.3 (abc123) built on 2026-01-01")
}

func TestSummarizeRequiresSignIn(t *testing.T) {
	env := newTestEnv(t, envOptions{authRequired: true})
	pdf := env.writePDF(t, "notes.pdf")

	_, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath)
	require.ErrorIs(t, err, auth.ErrNotSignedIn)
}

func TestSummarizeJSON(t *testing.T) {
	srv := newDocumentService(t)
	env := newTestEnv(t, envOptions{serviceURL: srv.URL, authRequired: true})
	env.signIn(t)
	pdf := env.writePDF(t, "notes.pdf")

	out, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath, "--output", "json")
	require.NoError(t, err)

	var result formatter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "notes.pdf", result.File)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "Topic A. Topic B.", result.Summary.Text)
	assert.Equal(t, []string{"What is Topic A?"}, result.Summary.Questions)
	assert.Nil(t, result.Answer)
}

func TestSummarizeText(t *testing.T) {
	srv := newDocumentService(t)
	env := newTestEnv(t, envOptions{serviceURL: srv.URL})
	pdf := env.writePDF(t, "notes.pdf")

	// auth.required is false, so no sign-in is needed
	out, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Document Summary: notes.pdf")
	assert.Contains(t, out, "Topic A. Topic B.")
}

func TestSummarizeServerError(t *testing.T) {
	srv := newDocumentService(t)
	env := newTestEnv(t, envOptions{serviceURL: srv.URL})
	pdf := env.writePDF(t, "huge.pdf")

	_, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "File too large")
}

func TestSummarizeNetworkError(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	pdf := env.writePDF(t, "notes.pdf")

	_, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), docservice.MsgNetwork)
}

func TestSummarizeRejectsNonPDF(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	path := env.writePDF(t, "notes.txt")

	_, err := executeCommand(t, "", "summarize", path, "--config", env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF file")
}

func TestAskCommand(t *testing.T) {
	srv := newDocumentService(t)
	env := newTestEnv(t, envOptions{serviceURL: srv.URL})
	pdf := env.writePDF(t, "notes.pdf")

	out, err := executeCommand(t, "", "ask", pdf, "--question", "  Explain Topic A  ",
		"--config", env.configPath, "--output", "json")
	require.NoError(t, err)

	var result formatter.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Answer)
	assert.Equal(t, "About Explain Topic A", result.Answer.Text)
	assert.Equal(t, "Explain Topic A", result.Answer.Question)
}

func TestAskRequiresQuestion(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	pdf := env.writePDF(t, "notes.pdf")

	_, err := executeCommand(t, "", "ask", pdf, "--question", "   ", "--config", env.configPath)
	require.Error(t, err)
	assert.Equal(t, docservice.MsgEmptyQuestion, err.Error())
}

func newIdentityService(t *testing.T) *httptest.Server {
	t.Helper()
	token := testToken(t, time.Now().Add(time.Hour))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/accounts:signInWithPassword", "/accounts:signUp":
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":{"message":"INVALID_LOGIN_CREDENTIALS"}}`)
				return
			}
			_, _ = fmt.Fprintf(w, `{"idToken":%q,"refreshToken":"r","localId":"uid-1","email":%q,"displayName":"Ada"}`,
				token, body["email"])
		case "/accounts:sendOobCode":
			_, _ = io.WriteString(w, `{}`)
		case "/accounts:update":
			_, _ = fmt.Fprintf(w, `{"idToken":%q,"refreshToken":"r2"}`, token)
		case "/token":
			if body["refresh_token"] != "r" {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, `{"error":{"message":"INVALID_REFRESH_TOKEN"}}`)
				return
			}
			_, _ = fmt.Fprintf(w, `{"id_token":%q,"refresh_token":"r3","user_id":"uid-1"}`, token)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := newIdentityService(t)
	env := newTestEnv(t, envOptions{identityURL: srv.URL, authRequired: true})

	out, err := executeCommand(t, "ada@example.com\nsecret\n", "login", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ada (ada@example.com)")
	assert.FileExists(t, env.credsPath)

	out, err = executeCommand(t, "", "whoami", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Ada")
	assert.Contains(t, out, "Email: ada@example.com (verified: yes)")
	assert.Contains(t, out, "UID: uid-1")

	out, err = executeCommand(t, "", "whoami", "--token", "--config", env.configPath)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(strings.TrimSpace(out), ".")), "expected a JWT")

	out, err = executeCommand(t, "", "logout", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	_, err = executeCommand(t, "", "whoami", "--config", env.configPath)
	assert.ErrorIs(t, err, auth.ErrNotSignedIn)
}

func TestExpiredSignInIsRenewed(t *testing.T) {
	identity := newIdentityService(t)
	docs := newDocumentService(t)
	env := newTestEnv(t, envOptions{serviceURL: docs.URL, identityURL: identity.URL, authRequired: true})
	pdf := env.writePDF(t, "notes.pdf")

	store := auth.NewFileStore(env.credsPath, nil)
	require.NoError(t, store.Save(&auth.Credentials{
		IDToken:      testToken(t, time.Now().Add(-time.Minute)),
		RefreshToken: "r",
		Email:        "ada@example.com",
	}))

	out, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath, "--output", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Topic A. Topic B.")

	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "r3", creds.RefreshToken)
	_, ok := store.CurrentUser()
	assert.True(t, ok)
}

func TestExpiredSignInWithRevokedRefreshToken(t *testing.T) {
	identity := newIdentityService(t)
	env := newTestEnv(t, envOptions{identityURL: identity.URL, authRequired: true})
	pdf := env.writePDF(t, "notes.pdf")

	require.NoError(t, auth.NewFileStore(env.credsPath, nil).Save(&auth.Credentials{
		IDToken:      testToken(t, time.Now().Add(-time.Minute)),
		RefreshToken: "revoked",
	}))

	_, err := executeCommand(t, "", "summarize", pdf, "--config", env.configPath)
	require.ErrorIs(t, err, auth.ErrNotSignedIn)
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newIdentityService(t)
	env := newTestEnv(t, envOptions{identityURL: srv.URL})

	_, err := executeCommand(t, "", "login", "--email", "ada@example.com", "--password", "wrong",
		"--config", env.configPath)
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password.", err.Error())
	assert.NoFileExists(t, env.credsPath)
}

func TestLoginPromptRequiresEmail(t *testing.T) {
	srv := newIdentityService(t)
	env := newTestEnv(t, envOptions{identityURL: srv.URL})

	_, err := executeCommand(t, "\n", "login", "--config", env.configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email is required")
}

func TestSignupAndPasswordCommands(t *testing.T) {
	srv := newIdentityService(t)
	env := newTestEnv(t, envOptions{identityURL: srv.URL})

	out, err := executeCommand(t, "", "signup", "--name", "Ada", "--email", "ada@example.com",
		"--password", "secret", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Account created for Ada (ada@example.com)")
	assert.Contains(t, out, "Check ada@example.com to verify your email address")

	out, err = executeCommand(t, "", "reset-password", "--email", "ada@example.com", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Password reset email sent to ada@example.com")

	_, err = executeCommand(t, "", "change-password", "--current", "secret", "--new", "secret",
		"--config", env.configPath)
	require.Error(t, err)

	out, err = executeCommand(t, "", "change-password", "--current", "secret", "--new", "better-secret",
		"--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Password updated")
}

func TestContactCommand(t *testing.T) {
	var payload map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = io.WriteString(w, "OK")
	}))
	defer srv.Close()

	env := newTestEnv(t, envOptions{emailjsURL: srv.URL})

	_, err := executeCommand(t, "", "contact", "--name", "Ada", "--email", "ada@example.com",
		"--message", "Hello", "--config", env.configPath)
	require.ErrorIs(t, err, auth.ErrNotSignedIn)

	env.signIn(t)
	out, err := executeCommand(t, "Hello from stdin\n", "contact", "--name", "Ada", "--email", "ada@example.com",
		"--message", "-", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Message sent successfully!")

	params, ok := payload["template_params"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Hello from stdin", params["message"])
	assert.Equal(t, "team@example.com", params["to_email"])
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "generated.yaml")

	out, err := executeCommand(t, "", "config", "init", "--path", path, "--minimal")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file created at")
	assert.FileExists(t, path)

	_, err = executeCommand(t, "", "config", "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	out, err = executeCommand(t, "", "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Document Service: http://localhost:8000")

	env := newTestEnv(t, envOptions{})
	out, err = executeCommand(t, "", "config", "show", "--config", env.configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "test-key")

	out, err = executeCommand(t, "", "config", "show", "--format", "json", "--config", env.configPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "test-key")
}
