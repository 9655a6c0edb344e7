package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"Friendbook/internals/models"
)

const identityKey = "user"

func init() {
	gob.Register(models.Identity{})
}

type Options struct {
	CookieName    string
	Secret        string
	EncryptionKey string
	MaxAge        int
	Secure        bool
	Log           logrus.FieldLogger
}

// Manager hands out per-request sessions stored in a signed cookie.
type Manager struct {
	store *sessions.CookieStore
	name  string
	log   logrus.FieldLogger
}

func NewManager(opts Options) *Manager {
	keys := [][]byte{[]byte(opts.Secret)}
	if opts.EncryptionKey != "" {
		keys = append(keys, []byte(opts.EncryptionKey))
	}
	store := sessions.NewCookieStore(keys...)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   opts.MaxAge,
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if opts.MaxAge > 0 {
		store.MaxAge(opts.MaxAge)
	}
	name := opts.CookieName
	if name == "" {
		name = "friendbook"
	}
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{store: store, name: name, log: log}
}

// Session is the client-held state for one request: the logged-in
// identity and any queued flash messages.
type Session struct {
	raw *sessions.Session
}

// Load decodes the request cookie. A missing, expired or tampered cookie
// yields an empty session.
func (m *Manager) Load(r *http.Request) *Session {
	raw, err := m.store.Get(r, m.name)
	if err != nil {
		m.log.WithError(err).WithField("cookie", m.name).Warn("Discarding undecodable session cookie")
	}
	// gorilla returns a fresh session alongside decode errors.
	return &Session{raw: raw}
}

// IsNew reports whether the request carried no valid session cookie.
func (s *Session) IsNew() bool {
	return s.raw.IsNew
}

func (s *Session) Identity() (models.Identity, bool) {
	id, ok := s.raw.Values[identityKey].(models.Identity)
	return id, ok
}

func (s *Session) SetIdentity(id models.Identity) {
	s.raw.Values[identityKey] = id
}

func (s *Session) Clear() {
	delete(s.raw.Values, identityKey)
}

func (s *Session) AddFlash(msg string) {
	s.raw.AddFlash(msg)
}

// DrainFlashes returns queued flashes and removes them from the session.
// The caller must Save for the removal to reach the client.
func (s *Session) DrainFlashes() []string {
	var out []string
	for _, f := range s.raw.Flashes() {
		if msg, ok := f.(string); ok {
			out = append(out, msg)
		}
	}
	return out
}

func (s *Session) Save(w http.ResponseWriter, r *http.Request) error {
	return s.raw.Save(r, w)
}
