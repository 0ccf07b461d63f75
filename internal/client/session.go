package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"vidtube/internal/models"
)

// Session is the authenticated identity a client carries between runs
type Session struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

func (s *Session) clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{Token: s.Token}
	if s.User != nil {
		u := *s.User
		u.Channels = append([]int64(nil), s.User.Channels...)
		out.User = &u
	}
	return out
}

// Persister stores a session outside the process. Load returns nil, nil
// when nothing has been saved.
type Persister interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Clear(ctx context.Context) error
}

// ===============================
// PERSISTERS
// ===============================

// FilePersister keeps the session as a JSON file
type FilePersister struct {
	Path string
}

func (p *FilePersister) Load(ctx context.Context) (*Session, error) {
	data, err := os.ReadFile(p.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return &s, nil
}

// Save writes through a temp file so a crash never leaves half a session
func (p *FilePersister) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (p *FilePersister) Clear(ctx context.Context) error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// MemoryPersister keeps the session in memory, mostly for tests
type MemoryPersister struct {
	mu      sync.Mutex
	session *Session
}

func (p *MemoryPersister) Load(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.clone(), nil
}

func (p *MemoryPersister) Save(ctx context.Context, s *Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = s.clone()
	return nil
}

func (p *MemoryPersister) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = nil
	return nil
}

// ===============================
// SESSION STORE
// ===============================

// SessionStore holds the current session and notifies subscribers when it
// changes. It is safe for concurrent use.
type SessionStore struct {
	// serializes mutations so a Patch read-modify-write is never interleaved
	write sync.Mutex

	mu        sync.RWMutex
	persister Persister
	session   *Session
	listeners map[int]func(*Session)
	nextID    int
}

// NewSessionStore creates a store backed by persister. A nil persister
// keeps the session in memory only.
func NewSessionStore(persister Persister) *SessionStore {
	if persister == nil {
		persister = &MemoryPersister{}
	}
	return &SessionStore{persister: persister, listeners: make(map[int]func(*Session))}
}

// Init loads any persisted session
func (s *SessionStore) Init(ctx context.Context) error {
	s.write.Lock()
	defer s.write.Unlock()

	session, err := s.store().Load(ctx)
	if err != nil {
		return err
	}
	s.set(session)
	return nil
}

// Current returns a copy of the session, or nil when logged out
func (s *SessionStore) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.clone()
}

// Token returns the bearer token, or ""
func (s *SessionStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Login replaces the session and persists it
func (s *SessionStore) Login(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return errors.New("session token is required")
	}
	s.write.Lock()
	defer s.write.Unlock()

	if err := s.store().Save(ctx, session); err != nil {
		return err
	}
	s.set(session)
	return nil
}

// Patch applies fn to the stored user and persists the result
func (s *SessionStore) Patch(ctx context.Context, fn func(u *models.User)) error {
	s.write.Lock()
	defer s.write.Unlock()

	current := s.Current()
	if current == nil || current.User == nil {
		return errors.New("no active session")
	}
	fn(current.User)
	if err := s.store().Save(ctx, current); err != nil {
		return err
	}
	s.set(current)
	return nil
}

// Logout clears the session everywhere
func (s *SessionStore) Logout(ctx context.Context) error {
	s.write.Lock()
	defer s.write.Unlock()

	if err := s.store().Clear(ctx); err != nil {
		return err
	}
	s.set(nil)
	return nil
}

// Close detaches the persister; later changes stay in memory
func (s *SessionStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persister = &MemoryPersister{}
	s.listeners = make(map[int]func(*Session))
}

// OnChange registers fn and returns a function that unregisters it.
// fn runs synchronously after each change and must not call Init, Login,
// Patch or Logout.
func (s *SessionStore) OnChange(fn func(*Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *SessionStore) store() Persister {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persister
}

func (s *SessionStore) set(session *Session) {
	s.mu.Lock()
	s.session = session.clone()
	listeners := make([]func(*Session), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(session.clone())
	}
}
