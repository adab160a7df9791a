// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package session keeps signed-in users in Valkey. The browser holds only a
// random ID in the ro_session cookie; the payload lives under session:<id>
// with a TTL, and session_user:<uuid> lists a user's live IDs so every
// device can be signed out at once.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"researchoffice/internal/models"
)

const (
	// CookieName is the name of the session cookie sent to the browser.
	CookieName = "ro_session"

	// DefaultTTL is how long a session lives without being rewritten.
	DefaultTTL = 24 * time.Hour

	keyPrefix     = "session:"
	userKeyPrefix = "session_user:"

	// idLength is the byte length of the random session ID (64 hex chars).
	idLength = 32
)

// ErrGone is returned by Update when the session no longer exists, either
// because it expired or because the user was signed out elsewhere.
var ErrGone = errors.New("session: gone")

// Data is the session payload.
type Data struct {
	UserID    uuid.UUID   `json:"user_id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      models.Role `json:"role"`
	TwoFADone bool        `json:"two_fa_done"`
	CreatedAt time.Time   `json:"created_at"`
}

// Can reports whether the session's role grants c.
func (d *Data) Can(c models.Capability) bool {
	return d != nil && d.Role.Can(c)
}

// Store manages session lifecycle in Valkey.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	secure bool
}

// NewStore creates a session store backed by the given Valkey client.
// secure marks the cookie Secure; enable it when served over TLS.
func NewStore(client *redis.Client, secure bool) *Store {
	return &Store{
		client: client,
		ttl:    DefaultTTL,
		secure: secure,
	}
}

func sessionKey(id string) string { return keyPrefix + id }
func userKey(userID uuid.UUID) string { return userKeyPrefix + userID.String() }

func (s *Store) setCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	})
}

// Create stores a new session for data and sets the cookie. It returns the
// session ID.
func (s *Store) Create(ctx context.Context, w http.ResponseWriter, data *Data) (string, error) {
	id, err := generateID()
	if err != nil {
		return "", fmt.Errorf("session create: %w", err)
	}

	data.CreatedAt = time.Now()
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("session marshal: %w", err)
	}

	uk := userKey(data.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(id), payload, s.ttl)
		pipe.SAdd(ctx, uk, id)
		pipe.Expire(ctx, uk, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("session store: %w", err)
	}

	s.setCookie(w, id, int(s.ttl.Seconds()))
	return id, nil
}

// Get loads the session named by the request cookie. A missing cookie or an
// expired session yields (nil, nil).
func (s *Store) Get(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, nil
	}

	payload, err := s.client.Get(ctx, sessionKey(cookie.Value)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var data Data
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("session unmarshal: %w", err)
	}
	return &data, nil
}

// Update rewrites the payload of the current session and restarts its TTL.
// It never recreates a session that has been removed, so a sign-out that
// races a 2FA verification wins; that case returns ErrGone.
func (s *Store) Update(ctx context.Context, r *http.Request, data *Data) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return errors.New("session update: no cookie")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session marshal: %w", err)
	}

	ok, err := s.client.SetXX(ctx, sessionKey(cookie.Value), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("session update: %w", err)
	}
	if !ok {
		return ErrGone
	}
	return nil
}

// Destroy removes the current session and expires the cookie. Without a
// cookie it does nothing.
func (s *Store) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	payload, err := s.client.GetDel(ctx, sessionKey(cookie.Value)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("session destroy: %w", err)
	}
	s.setCookie(w, "", -1)

	var data Data
	if len(payload) > 0 && json.Unmarshal(payload, &data) == nil {
		if err := s.client.SRem(ctx, userKey(data.UserID), cookie.Value).Err(); err != nil {
			return fmt.Errorf("session destroy: untrack: %w", err)
		}
	}
	return nil
}

// DestroyUser signs a user out on every device and reports how many live
// sessions were removed. Role changes and 2FA resets call it so a stale
// session cannot keep privileges the user no longer has.
func (s *Store) DestroyUser(ctx context.Context, userID uuid.UUID) (int, error) {
	uk := userKey(userID)
	ids, err := s.client.SMembers(ctx, uk).Result()
	if err != nil {
		return 0, fmt.Errorf("session list user %s: %w", userID, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}

	var removed *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removed = pipe.Del(ctx, keys...)
		pipe.Del(ctx, uk)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("session destroy user %s: %w", userID, err)
	}
	return int(removed.Val()), nil
}

func generateID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
