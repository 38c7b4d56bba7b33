package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"nexttripanywhere.com/web/internal/leadform"
)

const (
	sessionCookieName = "NEXTTRIP_WEB_SESSION"
	sessionTTL        = 30 * 24 * time.Hour
	// maxSessionBytes keeps the cookie value under the browsers' 4096-byte limit.
	maxSessionBytes = 4000
)

var errSessionTooLarge = errors.New("session: encoded cookie too large")

type SessionData struct {
	ID        string         `json:"id"`
	Quote     *leadform.Form `json:"quote,omitempty"`
	LastLead  string         `json:"lead,omitempty"`
	Source    string         `json:"src,omitempty"`
	CSRFToken string         `json:"csrf,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	// internal dirty flag; not serialized
	dirty bool
}

var (
	sessionSignKey = randomKey()
	sessionSecure  bool
)

// ConfigureSession sets the signing key and Secure flag for session and CSRF cookies.
// An empty key keeps a process-ephemeral one; the return value reports that case.
func ConfigureSession(key string, secure bool) (ephemeral bool) {
	sessionSecure = secure
	if strings.TrimSpace(key) == "" {
		return true
	}
	sessionSignKey = []byte(key)
	return false
}

func randomKey() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return []byte("insecure-dev-key-set-NEXTTRIP_WEB_SESSION_SIGNING_KEY")
	}
	return b
}

// Session loads or initializes a session and stores it in request context.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sd, fromCookie := readSessionCookie(r)
		if sd.ID == "" {
			sd.ID = randID()
			sd.CreatedAt = time.Now().UTC()
			sd.UpdatedAt = sd.CreatedAt
			sd.CSRFToken = newCSRFToken()
			sd.dirty = true
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sd)
		rw := NewResponseRecorder(w)
		// cookie must be set before the first header write
		rw.SetBeforeWrite(func(w http.ResponseWriter) {
			if sd.dirty || !fromCookie {
				writeSessionCookie(w, sd)
			}
		})
		next.ServeHTTP(rw, r.WithContext(ctx))
		// nothing written (e.g. HEAD): persist now
		if !rw.Written() && (sd.dirty || !fromCookie) {
			writeSessionCookie(w, sd)
		}
	})
}

// GetSession returns session data from context
func GetSession(r *http.Request) *SessionData {
	if v := r.Context().Value(ctxKeySession); v != nil {
		if sd, ok := v.(*SessionData); ok {
			return sd
		}
	}
	return &SessionData{}
}

// MarkDirty flags the session for writing at end of request
func (s *SessionData) MarkDirty() { s.dirty = true; s.UpdatedAt = time.Now().UTC() }

// QuoteForm returns the in-progress booking form, creating one when absent.
func (s *SessionData) QuoteForm() *leadform.Form {
	if s.Quote == nil {
		s.Quote = leadform.New()
		s.MarkDirty()
	}
	return s.Quote
}

// ClearQuote drops the booking form after a successful redirect.
func (s *SessionData) ClearQuote() {
	s.Quote = nil
	s.MarkDirty()
}

// readSessionCookie parses and verifies the session cookie
func readSessionCookie(r *http.Request) (*SessionData, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return &SessionData{}, false
	}
	payloadB, sigB, ok := strings.Cut(c.Value, ".")
	if !ok {
		return &SessionData{}, false
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadB)
	if err != nil {
		return &SessionData{}, false
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigB)
	if err != nil {
		return &SessionData{}, false
	}
	if !hmac.Equal(sig, sign(payload)) {
		return &SessionData{}, false
	}
	var sd SessionData
	if err := json.Unmarshal(payload, &sd); err != nil {
		return &SessionData{}, false
	}
	if !sd.CreatedAt.IsZero() && time.Since(sd.CreatedAt) > sessionTTL {
		return &SessionData{}, false
	}
	return &sd, true
}

func sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, sessionSignKey)
	mac.Write(payload)
	return mac.Sum(nil)
}

func encodeSession(sd *SessionData) (string, error) {
	b, err := json.Marshal(sd)
	if err != nil {
		return "", err
	}
	v := base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(sign(b))
	if len(v) > maxSessionBytes {
		return "", errSessionTooLarge
	}
	return v, nil
}

// writeSessionCookie drops the booking form rather than the whole session
// when the cookie would not fit, so the CSRF token survives.
func writeSessionCookie(w http.ResponseWriter, sd *SessionData) {
	value, err := encodeSession(sd)
	if errors.Is(err, errSessionTooLarge) && sd.Quote != nil {
		sd.Quote = nil
		value, err = encodeSession(sd)
	}
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   sessionSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(sessionTTL),
	})
}

// helpers
func randID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
