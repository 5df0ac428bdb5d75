package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yildizm/DocSum/internal/logger"
)

// Credentials is the on-disk record of a signed-in account
type Credentials struct {
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	LocalID      string    `json:"local_id,omitempty"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	SavedAt      time.Time `json:"saved_at"`
}

// Refresher exchanges a refresh token for new credentials
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*Credentials, error)
}

// refreshMargin renews ID tokens this long before they expire
const refreshMargin = 5 * time.Minute

// FileStore is a Context backed by a credentials file
type FileStore struct {
	path      string
	log       *logger.Logger
	now       func() time.Time
	refresher Refresher

	mu   sync.Mutex // serializes file writes
	subs subscribers
}

// NewFileStore creates a store for the credentials file at path
func NewFileStore(path string, log *logger.Logger) *FileStore {
	if log == nil {
		log = logger.Nop()
	}
	return &FileStore{
		path: path,
		log:  log.WithComponent("auth"),
		now:  time.Now,
	}
}

// WithRefresher lets the store renew expired ID tokens through r
func (s *FileStore) WithRefresher(r Refresher) *FileStore {
	s.refresher = r
	return s
}

// Path returns the credentials file location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the stored credentials. A missing file yields nil and no error.
func (s *FileStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	return &creds, nil
}

// CurrentUser implements Context. Unreadable, undecodable and expired
// credentials all count as signed out.
func (s *FileStore) CurrentUser() (*User, bool) {
	creds, err := s.Load()
	if err != nil {
		s.log.Warn("Ignoring unreadable credentials", logger.Error(err))
		return nil, false
	}
	if creds == nil || creds.IDToken == "" {
		return nil, false
	}

	user, err := ParseIDToken(creds.IDToken, s.now())
	if err != nil {
		s.log.Debug("Stored token is not usable", logger.Error(err))
		return nil, false
	}

	if user.Email == "" {
		user.Email = creds.Email
	}
	if user.DisplayName == "" {
		user.DisplayName = creds.DisplayName
	}
	return user, true
}

// Subscribe implements Context
func (s *FileStore) Subscribe(fn func(*User)) func() {
	return s.subs.add(fn)
}

// Save writes credentials with owner-only permissions and notifies subscribers
func (s *FileStore) Save(creds *Credentials) error {
	if creds == nil || creds.IDToken == "" {
		return fmt.Errorf("credentials must include an id token")
	}

	s.mu.Lock()
	err := s.write(creds)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.log.Info("Credentials saved", logger.F("email", creds.Email))
	s.notifyCurrent()
	return nil
}

// Clear removes the credentials file and notifies subscribers
func (s *FileStore) Clear() error {
	s.mu.Lock()
	err := os.Remove(s.path)
	s.mu.Unlock()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	s.log.Info("Credentials cleared")
	s.subs.notify(nil)
	return nil
}

// Watch notifies subscribers when another process changes the credentials
// file. It blocks until ctx is done.
func (s *FileStore) Watch(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			s.log.Warn("Failed to close watcher", logger.Error(err))
		}
	}()

	// Watch the directory so that atomic renames and re-creation are seen
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	name := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				s.log.Debug("Credentials changed", logger.F("op", event.Op.String()))
				s.notifyCurrent()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("Credentials watcher error", logger.Error(err))
		}
	}
}

// EnsureFresh renews the stored ID token when it has expired or is about
// to. Without a refresher or a stored refresh token it does nothing.
func (s *FileStore) EnsureFresh(ctx context.Context) error {
	if s.refresher == nil {
		return nil
	}

	creds, err := s.Load()
	if err != nil || creds == nil || creds.RefreshToken == "" {
		return err
	}

	user, err := ParseIDToken(creds.IDToken, s.now())
	if err == nil && (user.ExpiresAt.IsZero() || s.now().Add(refreshMargin).Before(user.ExpiresAt)) {
		return nil
	}

	fresh, err := s.refresher.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh sign-in: %w", err)
	}
	if fresh.LocalID == "" {
		fresh.LocalID = creds.LocalID
	}
	if fresh.Email == "" {
		fresh.Email = creds.Email
	}
	if fresh.DisplayName == "" {
		fresh.DisplayName = creds.DisplayName
	}

	s.log.Info("ID token refreshed", logger.F("email", fresh.Email))
	return s.Save(fresh)
}

// KeepFresh calls EnsureFresh every interval until ctx is done
func (s *FileStore) KeepFresh(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.EnsureFresh(ctx); err != nil {
				s.log.Warn("Token refresh failed", logger.Error(err))
			}
		}
	}
}

func (s *FileStore) notifyCurrent() {
	user, _ := s.CurrentUser()
	s.subs.notify(user)
}

// write replaces the file atomically
func (s *FileStore) write(creds *Credentials) error {
	if creds.SavedAt.IsZero() {
		creds.SavedAt = s.now().UTC()
	}

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	return nil
}
