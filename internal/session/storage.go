package session

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/shared"
	"golang.org/x/oauth2"
)

// Storage keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Backend is a key/value store with atomic multi-key writes.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	SetMany(values map[string]string) error
	Delete(keys ...string) error
}

// Storage is the persistent credential store.
type Storage struct {
	backend Backend
	logger  *log.Logger
}

// NewStorage wraps backend. A nil backend keeps credentials in memory.
func NewStorage(backend Backend, logger *log.Logger) *Storage {
	if backend == nil {
		backend = NewMemoryBackend()
	}
	if logger == nil {
		logger = shared.DiscardLogger()
	}
	return &Storage{backend: backend, logger: logger.With("component", "session")}
}

// Save writes the full session in one transaction.
func (s *Storage) Save(access, refresh string, user *models.User) {
	values := map[string]string{KeyAccessToken: access, KeyRefreshToken: refresh}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			s.logger.Error("failed to encode user", "error", err)
		} else {
			values[KeyUser] = string(data)
		}
	}
	s.set(values)
}

// Read returns the stored session. Any backend failure yields an empty session.
func (s *Storage) Read() models.Session {
	access, err := s.get(KeyAccessToken)
	if err != nil {
		return models.Session{}
	}
	refresh, err := s.get(KeyRefreshToken)
	if err != nil {
		return models.Session{}
	}
	raw, err := s.get(KeyUser)
	if err != nil {
		return models.Session{}
	}

	sess := models.Session{AccessToken: access, RefreshToken: refresh}
	if raw != "" {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.Warn("discarding unreadable stored user", "error", err)
		} else {
			sess.User = &user
		}
	}
	return sess
}

// Clear removes every credential.
func (s *Storage) Clear() {
	if err := s.backend.Delete(KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		s.logger.Error("failed to clear credentials", "error", err)
	}
}

// UpdateAccess replaces the stored access token.
func (s *Storage) UpdateAccess(token string) {
	s.set(map[string]string{KeyAccessToken: token})
}

// UpdateRefresh replaces the stored refresh token.
func (s *Storage) UpdateRefresh(token string) {
	s.set(map[string]string{KeyRefreshToken: token})
}

// UpdateTokens replaces both tokens in one write.
func (s *Storage) UpdateTokens(access, refresh string) {
	s.set(map[string]string{KeyAccessToken: access, KeyRefreshToken: refresh})
}

// UpdateUser replaces the stored user.
func (s *Storage) UpdateUser(user *models.User) {
	if user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("failed to encode user", "error", err)
		return
	}
	s.set(map[string]string{KeyUser: string(data)})
}

// Token implements [oauth2.TokenSource] over the stored pair.
//
// It returns [shared.ErrNotAuthenticated] when neither token is stored.
func (s *Storage) Token() (*oauth2.Token, error) {
	sess := s.Read()
	if sess.AccessToken == "" && sess.RefreshToken == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return NewToken(sess.AccessToken, sess.RefreshToken), nil
}

func (s *Storage) get(key string) (string, error) {
	v, _, err := s.backend.Get(key)
	if err != nil {
		s.logger.Error("failed to read credential", "key", key, "error", err)
		return "", err
	}
	return v, nil
}

func (s *Storage) set(values map[string]string) {
	if err := s.backend.SetMany(values); err != nil {
		s.logger.Error("failed to write credentials", "error", err)
	}
}

// MemoryBackend is a process-local [Backend].
type MemoryBackend struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryBackend creates an empty [MemoryBackend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryBackend) SetMany(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *MemoryBackend) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}
