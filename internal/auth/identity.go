package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yildizm/DocSum/internal/logger"
)

// IdentityError is a failure reported by the identity provider
type IdentityError struct {
	Code       string
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *IdentityError) Error() string {
	return e.Message()
}

// Unwrap returns the underlying error
func (e *IdentityError) Unwrap() error {
	return e.Cause
}

// Message returns the user-facing text for the error code
func (e *IdentityError) Message() string {
	if msg, ok := identityMessages[e.Code]; ok {
		return msg
	}
	if e.Cause != nil {
		return "Could not reach the sign-in service. Please try again."
	}
	return "An unknown error occurred"
}

var identityMessages = map[string]string{
	"EMAIL_NOT_FOUND":             "Invalid email or password.",
	"INVALID_PASSWORD":            "Invalid email or password.",
	"INVALID_LOGIN_CREDENTIALS":   "Invalid email or password.",
	"EMAIL_EXISTS":                "An account with this email already exists.",
	"WEAK_PASSWORD":               "Password should be at least 6 characters.",
	"INVALID_EMAIL":               "Please enter a valid email address.",
	"MISSING_PASSWORD":            "Please enter your password.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "Too many attempts. Please try again later.",
	"USER_DISABLED":               "This account has been disabled.",
	"TOKEN_EXPIRED":               "Your session has expired. Please sign in again.",
	"INVALID_REFRESH_TOKEN":       "Your session has expired. Please sign in again.",
	"INVALID_ID_TOKEN":            "Your session has expired. Please sign in again.",
	"USER_NOT_FOUND":              "This account no longer exists.",

	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": "Please sign in again before changing your password.",
}

// IdentityClient calls the identity provider's email and password REST API
// and its secure token service
type IdentityClient struct {
	baseURL  *url.URL
	tokenURL *url.URL
	apiKey   string
	client   *http.Client
	log      *logger.Logger
	now      func() time.Time
}

// NewIdentityClient creates a client for the provider at baseURL whose
// refresh tokens are exchanged at tokenURL
func NewIdentityClient(baseURL, tokenURL, apiKey string, timeout time.Duration, log *logger.Logger) (*IdentityClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("identity API key is required (set auth.api_key or DOCSUM_AUTH_API_KEY)")
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid identity URL: %q", baseURL)
	}
	tu, err := url.Parse(tokenURL)
	if err != nil || tu.Host == "" {
		return nil, fmt.Errorf("invalid token URL: %q", tokenURL)
	}

	if log == nil {
		log = logger.Nop()
	}

	return &IdentityClient{
		baseURL:  u,
		tokenURL: tu,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
		log:      log.WithComponent("identity"),
		now:      time.Now,
	}, nil
}

type tokenResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
}

func (r *tokenResponse) credentials() *Credentials {
	return &Credentials{
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		LocalID:      r.LocalID,
		Email:        r.Email,
		DisplayName:  r.DisplayName,
	}
}

// SignIn exchanges an email and password for credentials
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	var resp tokenResponse
	err := c.call(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.credentials(), nil
}

// SignUp creates an account and sends a verification email
func (c *IdentityClient) SignUp(ctx context.Context, email, password, displayName string) (*Credentials, error) {
	var resp tokenResponse
	err := c.call(ctx, "accounts:signUp", map[string]interface{}{
		"email":             strings.TrimSpace(email),
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if displayName = strings.TrimSpace(displayName); displayName != "" {
		var updated tokenResponse
		if err := c.call(ctx, "accounts:update", map[string]interface{}{
			"idToken":           resp.IDToken,
			"displayName":       displayName,
			"returnSecureToken": true,
		}, &updated); err != nil {
			return nil, err
		}
		resp.DisplayName = displayName
		if updated.IDToken != "" {
			resp.IDToken = updated.IDToken
			resp.RefreshToken = updated.RefreshToken
		}
	}

	if err := c.call(ctx, "accounts:sendOobCode", map[string]interface{}{
		"requestType": "VERIFY_EMAIL",
		"idToken":     resp.IDToken,
	}, nil); err != nil {
		c.log.Warn("Failed to send verification email", logger.Error(err))
	}

	return resp.credentials(), nil
}

// SendPasswordReset emails a password reset link
func (c *IdentityClient) SendPasswordReset(ctx context.Context, email string) error {
	return c.call(ctx, "accounts:sendOobCode", map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       strings.TrimSpace(email),
	}, nil)
}

// ChangePassword re-authenticates with the current password and sets a new one
func (c *IdentityClient) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) (*Credentials, error) {
	creds, err := c.SignIn(ctx, email, currentPassword)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	if err := c.call(ctx, "accounts:update", map[string]interface{}{
		"idToken":           creds.IDToken,
		"password":          newPassword,
		"returnSecureToken": true,
	}, &resp); err != nil {
		return nil, err
	}

	if resp.IDToken != "" {
		creds.IDToken = resp.IDToken
		creds.RefreshToken = resp.RefreshToken
	}
	return creds, nil
}

// Refresh exchanges a refresh token for a new ID token. Email and display
// name are not part of the exchange and are left empty.
func (c *IdentityClient) Refresh(ctx context.Context, refreshToken string) (*Credentials, error) {
	if refreshToken == "" {
		return nil, &IdentityError{Code: "INVALID_REFRESH_TOKEN"}
	}

	var resp struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		UserID       string `json:"user_id"`
	}
	err := c.post(ctx, c.tokenURL.JoinPath("token"), "token", map[string]interface{}{
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.IDToken == "" {
		return nil, &IdentityError{Cause: fmt.Errorf("token response has no id_token")}
	}

	creds := &Credentials{
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		LocalID:      resp.UserID,
	}
	if creds.RefreshToken == "" {
		creds.RefreshToken = refreshToken
	}
	return creds, nil
}

// VerifyIDToken accepts a bearer token only when the provider confirms it
// belongs to a live account. The decoded claims must also be current and
// name the same account the provider returns.
func (c *IdentityClient) VerifyIDToken(ctx context.Context, token string) (*User, error) {
	claimed, err := ParseIDToken(token, c.now())
	if err != nil {
		return nil, err
	}

	var resp struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			DisplayName   string `json:"displayName"`
			EmailVerified bool   `json:"emailVerified"`
			Disabled      bool   `json:"disabled"`
		} `json:"users"`
	}
	if err := c.call(ctx, "accounts:lookup", map[string]interface{}{"idToken": token}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Users) == 0 {
		return nil, &IdentityError{Code: "USER_NOT_FOUND"}
	}

	account := resp.Users[0]
	if account.LocalID != claimed.UID {
		c.log.Warn("Token subject does not match account", logger.F("subject", claimed.UID))
		return nil, &IdentityError{Code: "INVALID_ID_TOKEN"}
	}
	if account.Disabled {
		return nil, &IdentityError{Code: "USER_DISABLED"}
	}

	return &User{
		UID:           account.LocalID,
		Email:         account.Email,
		DisplayName:   account.DisplayName,
		EmailVerified: account.EmailVerified,
		ExpiresAt:     claimed.ExpiresAt,
	}, nil
}

// call posts a JSON body to an identity endpoint and decodes the response into out
func (c *IdentityClient) call(ctx context.Context, method string, body interface{}, out interface{}) error {
	return c.post(ctx, c.baseURL.JoinPath(method), method, body, out)
}

func (c *IdentityClient) post(ctx context.Context, endpoint *url.URL, method string, body interface{}, out interface{}) error {
	query := endpoint.Query()
	query.Set("key", c.apiKey)
	endpoint.RawQuery = query.Encode()

	jsonData, err := json.Marshal(body)
	if err != nil {
		return &IdentityError{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewBuffer(jsonData))
	if err != nil {
		return &IdentityError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("Identity request failed", logger.F("method", method), logger.Error(err))
		return &IdentityError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &IdentityError{StatusCode: resp.StatusCode, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		code := parseIdentityCode(data)
		c.log.Info("Identity provider rejected request",
			logger.F("method", method),
			logger.F("status", resp.StatusCode),
			logger.F("code", code))
		return &IdentityError{Code: code, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &IdentityError{StatusCode: resp.StatusCode, Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// parseIdentityCode extracts the error code, e.g. "WEAK_PASSWORD" from
// "WEAK_PASSWORD : Password should be at least 6 characters"
func parseIdentityCode(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	code, _, _ := strings.Cut(envelope.Error.Message, " : ")
	return strings.TrimSpace(code)
}
