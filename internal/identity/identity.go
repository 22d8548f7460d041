// Package identity provides anonymous per-browser identity for the web UI.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"time"
)

const (
	AnonCookieName   = "lingo_anon_id"
	anonCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const ownerKey contextKey = iota

var anonIDPattern = regexp.MustCompile(`^anon_[a-f0-9]{32}$`)

// OwnerFromContext extracts the browser identity from the request context.
func OwnerFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ownerKey).(string); ok {
		return v
	}
	return ""
}

// WithOwner returns a context carrying the given identity.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

func generateAnonID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate anonymous id: %w", err)
	}
	return "anon_" + hex.EncodeToString(buf), nil
}

func isValidAnonID(id string) bool {
	return anonIDPattern.MatchString(id)
}

// Option adjusts how the identity cookie is issued.
type Option func(*cookieOptions)

type cookieOptions struct {
	crossSite bool
}

// WithCrossSite issues the cookie with SameSite=None and Secure so a frontend
// on another site can send it on credentialed requests.
func WithCrossSite() Option {
	return func(o *cookieOptions) { o.crossSite = true }
}

func getOrCreateAnonID(w http.ResponseWriter, r *http.Request, isDev bool, opts cookieOptions) (string, error) {
	id := ""
	if c, err := r.Cookie(AnonCookieName); err == nil && isValidAnonID(c.Value) {
		id = c.Value
	} else {
		id, err = generateAnonID()
		if err != nil {
			return "", err
		}
	}

	cookie := &http.Cookie{
		Name:     AnonCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(anonCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(anonCookieMaxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	}
	if opts.crossSite {
		// Browsers reject SameSite=None without Secure.
		cookie.SameSite = http.SameSiteNoneMode
		cookie.Secure = true
	}

	// Refresh on every request so an active learner never loses the session.
	http.SetCookie(w, cookie)
	return id, nil
}

// Middleware injects the anonymous browser identity into the request context.
func Middleware(isDev bool, opts ...Option) func(http.Handler) http.Handler {
	var co cookieOptions
	for _, opt := range opts {
		opt(&co)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner, err := getOrCreateAnonID(w, r, isDev, co)
			if err != nil {
				http.Error(w, `{"error":"failed to establish anonymous identity"}`, http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}
