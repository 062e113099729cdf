package dashboard

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
)

// Storage is the opaque key/value persistence behind the session store. Keys
// are short identifiers; values are serialized blobs.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

const (
	// userKey is session-scoped: it holds the logged-in user and token.
	userKey = "ghalaUser"
	// darkModeKey is durable: the theme preference outlives the session.
	darkModeKey = "ghalaDarkMode"
)

// ErrAnonymous is returned by operations that need an authenticated session.
var ErrAnonymous = errors.New("not logged in")

type persistedSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionStore tracks whether the app is anonymous or authenticated, persists
// the identity across restarts, and installs the token on the API client.
type SessionStore struct {
	client  *Client
	storage Storage

	mu   sync.RWMutex
	user *User
}

// NewSessionStore creates a SessionStore persisting through storage.
func NewSessionStore(client *Client, storage Storage) *SessionStore {
	return &SessionStore{client: client, storage: storage}
}

// Login posts credentials and, on success, persists the session and installs
// the token. The error message for bad credentials comes from the server.
func (s *SessionStore) Login(ctx context.Context, username, password string) (*User, error) {
	result, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(persistedSession{Token: result.Token, User: result.User})
	if err != nil {
		return nil, errors.Wrap(err, "encode session")
	}
	if err := s.storage.Set(userKey, string(blob)); err != nil {
		return nil, errors.Wrap(err, "persist session")
	}

	s.client.SetToken(result.Token)
	s.mu.Lock()
	u := result.User
	s.user = &u
	s.mu.Unlock()
	return &u, nil
}

// Restore loads a previously persisted session, if any. No expiry check is
// done here: a stale token surfaces as a 401 on the first authenticated call.
func (s *SessionStore) Restore() (*User, bool) {
	blob, ok := s.storage.Get(userKey)
	if !ok {
		return nil, false
	}

	var ps persistedSession
	if err := json.Unmarshal([]byte(blob), &ps); err != nil {
		// Corrupt entry, drop it.
		_ = s.storage.Delete(userKey)
		return nil, false
	}

	s.client.SetToken(ps.Token)
	s.mu.Lock()
	u := ps.User
	s.user = &u
	s.mu.Unlock()
	return &u, true
}

// Logout revokes the token server-side on a best-effort basis, then clears
// the persisted session. The dark-mode preference survives.
func (s *SessionStore) Logout(ctx context.Context) {
	_ = s.client.Logout(ctx)
	_ = s.storage.Delete(userKey)
	s.client.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// Current returns the logged-in user, or nil when anonymous.
func (s *SessionStore) Current() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a user is logged in.
func (s *SessionStore) Authenticated() bool {
	return s.Current() != nil
}

// MerchantID returns the logged-in user's merchant id, or ErrAnonymous.
func (s *SessionStore) MerchantID() (string, error) {
	u := s.Current()
	if u == nil {
		return "", ErrAnonymous
	}
	return u.MerchantID, nil
}

// DarkMode reads the durable theme preference.
func (s *SessionStore) DarkMode() bool {
	v, ok := s.storage.Get(darkModeKey)
	return ok && v == "true"
}

// SetDarkMode writes the durable theme preference.
func (s *SessionStore) SetDarkMode(enabled bool) {
	v := "false"
	if enabled {
		v = "true"
	}
	_ = s.storage.Set(darkModeKey, v)
}

// MemoryStorage is an in-process Storage, used in tests and as the fallback
// when no state directory is available.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MemoryStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// FileStorage persists keys as a JSON map in a single file, the terminal
// front-end's stand-in for browser storage.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a FileStorage at path. The parent directory is
// created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) load() map[string]string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return map[string]string{}
	}
	out := map[string]string{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]string{}
	}
	return out
}

func (f *FileStorage) store(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode storage")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "create storage dir")
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return errors.Wrap(err, "write storage")
	}
	return nil
}

func (f *FileStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.load()[key]
	return v, ok
}

func (f *FileStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.load()
	m[key] = value
	return f.store(m)
}

func (f *FileStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.load()
	delete(m, key)
	return f.store(m)
}
