package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-hyperclient/pkg/collection"
)

// ErrNoSession is returned by operations that require an authenticated
// session when none is active.
var ErrNoSession = errors.New("session: not logged in")

// User privilege levels. Super users enter the client at the archive list
// and may edit privileged fields; basic users only read.
const (
	UserTypeSuper = "super"
	UserTypeAdmin = "admin"
	UserTypeBasic = "basic"
)

// Session carries the authenticated identity and the entry point every
// subsequent request and navigation starts from. PasswordHash is the
// client-side SHA-256 of the password; the raw password is never retained.
type Session struct {
	Username       string
	PasswordHash   string
	UserType       string
	EntrypointURL  string
	EntrypointName string
}

// Super reports whether the session has elevated privilege.
func (s Session) Super() bool {
	return s.UserType == UserTypeSuper
}

// HashPassword computes the hex SHA-256 digest sent and stored in place of
// the raw password.
func HashPassword(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// LoginFetcher probes a resource URL with candidate credentials. The client
// package provides an implementation; the indirection keeps this package free
// of transport concerns.
type LoginFetcher func(ctx context.Context, url, username, passwordHash string) (*collection.Document, error)

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a zap logger. The default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// Store holds the transient session and mirrors it into durable storage when
// the user asked to be remembered. It is safe for use from a single event
// handler at a time; the mutex guards against accidental cross-goroutine use.
type Store struct {
	mu       sync.RWMutex
	current  *Session
	durable  DurableStore
	remember bool
	log      *zap.Logger
}

// NewStore builds a session store around a durable mirror. Pass a MemoryStore
// for throwaway instances in tests.
func NewStore(durable DurableStore, options ...Option) *Store {
	s := &Store{
		durable: durable,
		log:     zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.durable == nil {
		s.durable = NewMemoryStore()
	}
	return s
}

// Rehydrate consults durable storage once at process start. It reports
// whether a remembered session was restored.
func (s *Store) Rehydrate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored, err := s.durable.Load()
	if err != nil {
		s.log.Warn("session: durable load failed", zap.Error(err))
		return false
	}
	if restored == nil || restored.Username == "" {
		return false
	}
	copied := *restored
	s.current = &copied
	s.remember = true
	s.log.Debug("session: restored from durable storage", zap.String("username", copied.Username))
	return true
}

// Login hashes the password, probes the user resource with the candidate
// credentials, and derives the session's entry point from the response: super
// users start at the archive_list link, everyone else at their accessible
// archive (the first item link). Durable storage is touched only when
// remember is set; a failed probe clears both stores.
func (s *Store) Login(ctx context.Context, fetch LoginFetcher, entrypoint, username, password string, remember bool) (Session, error) {
	if fetch == nil {
		return Session{}, errors.New("session: login fetcher is required")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return Session{}, errors.New("session: username is required")
	}

	hash := HashPassword(password)
	url := entrypoint + username + "/"

	doc, err := fetch(ctx, url, username, hash)
	if err != nil {
		s.Clear()
		return Session{}, fmt.Errorf("session: login probe: %w", err)
	}
	if len(doc.Items) == 0 {
		s.Clear()
		return Session{}, fmt.Errorf("session: login response for %s carried no items", username)
	}

	sess := Session{
		Username:     username,
		PasswordHash: hash,
		UserType:     collection.FindString(doc.Items[0].Data, "userType"),
	}

	if sess.Super() {
		href, ok := collection.FindLink(doc.Links, "archive_list")
		if !ok {
			s.Clear()
			return Session{}, errors.New("session: archive_list link missing for super user")
		}
		sess.EntrypointURL = href
		sess.EntrypointName = "Archives"
	} else {
		if len(doc.Items[0].Links) == 0 {
			s.Clear()
			return Session{}, fmt.Errorf("session: no accessible archive for %s", username)
		}
		archive := doc.Items[0].Links[0]
		sess.EntrypointURL = archive.Href
		sess.EntrypointName = archive.Name
	}

	if err := s.set(sess, remember); err != nil {
		return Session{}, err
	}
	s.log.Info("session: login", zap.String("username", username), zap.String("userType", sess.UserType))
	return sess, nil
}

func (s *Store) set(sess Session, remember bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := sess
	s.current = &copied
	s.remember = remember

	if remember {
		if err := s.durable.Save(sess); err != nil {
			return fmt.Errorf("session: persist: %w", err)
		}
	} else if err := s.durable.Clear(); err != nil {
		return fmt.Errorf("session: clear durable: %w", err)
	}
	return nil
}

// Current returns a copy of the active session.
func (s *Store) Current() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Session{}, false
	}
	return *s.current, true
}

// Credentials exposes the username and password hash attached to every
// request. Implements the client package's credential source.
func (s *Store) Credentials() (username, passwordHash string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return "", "", false
	}
	return s.current.Username, s.current.PasswordHash, true
}

// UpdatePassword refreshes the stored hash when the edited identity matches
// the active session, so follow-up requests authenticate with the new
// credential immediately. The durable mirror is updated only when one exists.
func (s *Store) UpdatePassword(username, newHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Username != username {
		return
	}
	s.current.PasswordHash = newHash
	if s.remember {
		if err := s.durable.Save(*s.current); err != nil {
			s.log.Warn("session: durable password refresh failed", zap.Error(err))
		}
	}
}

// Clear destroys the transient session and the durable mirror. Used at logout
// and on authentication failure.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *Store) clearLocked() {
	s.current = nil
	s.remember = false
	if err := s.durable.Clear(); err != nil {
		s.log.Warn("session: durable clear failed", zap.Error(err))
	}
}
