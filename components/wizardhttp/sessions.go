package wizardhttp

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/wizard"
)

// session serialises requests for one wizard.
type session struct {
	mu       sync.Mutex
	wizard   *wizard.Wizard
	lastSeen time.Time
}

type sessionStore struct {
	mu        sync.Mutex
	items     map[string]*session
	opts      Options
	now       func() time.Time
	lastSweep time.Time
}

func newSessionStore(opts Options) *sessionStore {
	return &sessionStore{items: map[string]*session{}, opts: opts, now: time.Now}
}

// acquire returns the caller's session, issuing a cookie for new visitors.
// An unknown but well-formed id resumes from the store.
func (s *sessionStore) acquire(w http.ResponseWriter, r *http.Request) (*session, error) {
	id := ""
	if cookie, err := r.Cookie(s.opts.CookieName); err == nil {
		if parsed, err := uuid.Parse(cookie.Value); err == nil {
			id = parsed.String()
		}
	}
	if id == "" {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.opts.CookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.sweep(now)
	if sess, ok := s.items[id]; ok {
		sess.lastSeen = now
		return sess, nil
	}

	logger := s.opts.Logger.With(zap.String("session", id))
	wz, err := wizard.New(s.opts.Schema,
		wizard.WithStore(persistence.Scope(s.opts.Store, id)),
		wizard.WithStoreTimeout(s.opts.StoreTimeout),
		wizard.WithSink(s.opts.Sink),
		wizard.WithSummary(s.opts.Summary),
		wizard.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("wizardhttp: open session: %w", err)
	}
	if wz.Restored() {
		logger.Info("session resumed from store")
	}
	sess := &session{wizard: wz, lastSeen: now}
	s.items[id] = sess
	return sess, nil
}

// sweep closes sessions idle for at least IdleTimeout. Sessions busy with a
// request are skipped. Runs at most every quarter timeout; callers hold s.mu.
func (s *sessionStore) sweep(now time.Time) {
	idle := s.opts.IdleTimeout
	if idle <= 0 || now.Sub(s.lastSweep) < idle/4 {
		return
	}
	s.lastSweep = now
	for id, sess := range s.items {
		if now.Sub(sess.lastSeen) < idle {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		sess.wizard.Close()
		sess.mu.Unlock()
		delete(s.items, id)
		s.opts.Logger.Debug("session evicted", zap.String("session", id), zap.Duration("idle", now.Sub(sess.lastSeen)))
	}
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *sessionStore) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.items {
		sess.mu.Lock()
		sess.wizard.Close()
		sess.mu.Unlock()
		delete(s.items, id)
	}
}
