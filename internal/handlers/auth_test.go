package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"

	"researchoffice/internal/models"
	"researchoffice/internal/session"
)

// withSessions attaches a Valkey-backed session store to env. Skips the
// test when Valkey is not reachable.
func withSessions(t *testing.T, env *testEnv) *session.Store {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}
	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	env.Deps.Sessions = session.NewStore(client, false)
	return env.Deps.Sessions
}

func formRequest(target string, values url.Values, sess *session.Data) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess != nil {
		r = r.WithContext(ctxWithSession(r.Context(), sess))
	}
	return r
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuth(env.Deps)
	env.Users.add("editor@example.com", "correct-horse", models.RoleEditor)

	tests := []struct {
		name, email, password string
	}{
		{"wrong password", "editor@example.com", "nope"},
		{"unknown email", "ghost@example.com", "correct-horse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			auth.LoginSubmit(rec, formRequest("/login", url.Values{"email": {tt.email}, "password": {tt.password}}, nil))
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want 401", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), "Invalid email or password.") {
				t.Error("error message not rendered")
			}
			if len(rec.Result().Cookies()) != 0 {
				t.Error("no session cookie should be set")
			}
		})
	}
}

func TestSignupRejections(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuth(env.Deps)
	env.Users.add("taken@example.com", "password1", models.RoleViewer)

	tests := []struct {
		name   string
		values url.Values
		want   int
	}{
		{"missing name", url.Values{"email": {"a@example.com"}, "password": {"password1"}}, http.StatusBadRequest},
		{"bad email", url.Values{"name": {"A"}, "email": {"nope"}, "password": {"password1"}}, http.StatusBadRequest},
		{"short password", url.Values{"name": {"A"}, "email": {"a@example.com"}, "password": {"short"}}, http.StatusBadRequest},
		{"duplicate email", url.Values{"name": {"A"}, "email": {" Taken@Example.com "}, "password": {"password1"}}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			auth.SignupSubmit(rec, formRequest("/signup", tt.values, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
	if users, _ := env.Users.List(); len(users) != 1 {
		t.Errorf("no user should be created, have %d", len(users))
	}
}

func TestAuthPagesRedirectSignedInUsers(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuth(env.Deps)
	sess := testSession(uuid.New(), models.RoleViewer)

	for name, h := range map[string]http.HandlerFunc{"login": auth.LoginPage, "signup": auth.SignupPage} {
		rec := httptest.NewRecorder()
		h(rec, newRequest(http.MethodGet, "/"+name, nil, sess))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
			t.Errorf("%s: got %d to %q, want redirect to /dashboard", name, rec.Code, rec.Header().Get("Location"))
		}
	}

	rec := httptest.NewRecorder()
	auth.LoginPage(rec, newRequest(http.MethodGet, "/login", nil, nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `name="csrf_token"`) {
		t.Errorf("anonymous login page should render the form, got %d", rec.Code)
	}
}

func TestTwoFAVerifyRequiresSession(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuth(env.Deps)

	rec := httptest.NewRecorder()
	auth.TwoFAVerifyPage(rec, newRequest(http.MethodGet, "/2fa/verify", nil, nil))
	if rec.Header().Get("Location") != "/login" {
		t.Errorf("got redirect %q, want /login", rec.Header().Get("Location"))
	}
}

func TestLoginWithoutTwoFA(t *testing.T) {
	env := newTestEnv(t)
	sessions := withSessions(t, env)
	auth := NewAuth(env.Deps)
	env.Users.add("editor@example.com", "correct-horse", models.RoleEditor)

	rec := httptest.NewRecorder()
	auth.LoginSubmit(rec, formRequest("/login", url.Values{"email": {"Editor@Example.com"}, "password": {"correct-horse"}}, nil))

	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("got %d to %q, want redirect to /dashboard", rec.Code, rec.Header().Get("Location"))
	}

	data := sessionFromResponse(t, sessions, rec)
	if !data.TwoFADone || data.Role != models.RoleEditor {
		t.Errorf("unexpected session: %+v", data)
	}
}

func TestLoginWithTwoFA(t *testing.T) {
	env := newTestEnv(t)
	sessions := withSessions(t, env)
	auth := NewAuth(env.Deps)

	u := env.Users.add("admin@example.com", "correct-horse", models.RoleAdmin)
	key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: u.Email})
	if err != nil {
		t.Fatalf("generate totp: %v", err)
	}
	env.Users.SetTOTPSecret(u.ID, key.Secret())
	env.Users.EnableTOTP(u.ID)

	rec := httptest.NewRecorder()
	auth.LoginSubmit(rec, formRequest("/login", url.Values{"email": {u.Email}, "password": {"correct-horse"}}, nil))
	if rec.Header().Get("Location") != "/2fa/verify" {
		t.Fatalf("got redirect %q, want /2fa/verify", rec.Header().Get("Location"))
	}
	cookie := rec.Result().Cookies()[0]
	data := sessionFromResponse(t, sessions, rec)
	if data.TwoFADone {
		t.Fatal("session should wait for the second factor")
	}

	verify := func(code string) *httptest.ResponseRecorder {
		r := formRequest("/2fa/verify", url.Values{"code": {code}}, data)
		r.AddCookie(cookie)
		rec := httptest.NewRecorder()
		auth.TwoFAVerifySubmit(rec, r)
		return rec
	}

	if rec := verify("000000x"); rec.Code != http.StatusUnauthorized {
		t.Errorf("bad code: got %d, want 401", rec.Code)
	}

	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if rec := verify(code); rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("good code: got redirect %q, want /dashboard", rec.Header().Get("Location"))
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	updated, err := sessions.Get(context.Background(), r)
	if err != nil || updated == nil || !updated.TwoFADone {
		t.Errorf("session should be fully authenticated, got %+v (err %v)", updated, err)
	}
}

func TestSignupCreatesViewer(t *testing.T) {
	env := newTestEnv(t)
	sessions := withSessions(t, env)
	auth := NewAuth(env.Deps)

	rec := httptest.NewRecorder()
	auth.SignupSubmit(rec, formRequest("/signup", url.Values{
		"name": {"New Person"}, "email": {"New@Example.com"}, "password": {"password1"},
	}, nil))

	if rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("got %d to %q, want redirect to /dashboard", rec.Code, rec.Header().Get("Location"))
	}
	u, _ := env.Users.FindByEmail("new@example.com")
	if u == nil || u.Role != models.RoleViewer {
		t.Fatalf("expected a VIEWER account, got %+v", u)
	}
	if data := sessionFromResponse(t, sessions, rec); data.UserID != u.ID {
		t.Errorf("session user: got %s, want %s", data.UserID, u.ID)
	}
}

func TestTwoFASetup(t *testing.T) {
	env := newTestEnv(t)
	auth := NewAuth(env.Deps)
	u := env.Users.add("me@example.com", "pw", models.RoleEditor)
	sess := testSession(u.ID, models.RoleEditor)
	sess.Email = u.Email

	rec := httptest.NewRecorder()
	auth.TwoFASetupPage(rec, newRequest(http.MethodGet, "/dashboard/2fa/setup", nil, sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rec.Code)
	}
	stored, _ := env.Users.FindByID(u.ID)
	if stored.TOTPSecret == nil || stored.TOTPEnabled {
		t.Fatal("setup should store a secret without enabling 2FA")
	}
	if !strings.Contains(rec.Body.String(), "data:image/png;base64,") {
		t.Error("setup page should embed the QR code")
	}

	rec = httptest.NewRecorder()
	auth.TwoFASetupSubmit(rec, formRequest("/dashboard/2fa/setup", url.Values{"code": {"123"}}, sess))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad code: got %d, want 400", rec.Code)
	}

	code, _ := totp.GenerateCode(*stored.TOTPSecret, time.Now())
	rec = httptest.NewRecorder()
	auth.TwoFASetupSubmit(rec, formRequest("/dashboard/2fa/setup", url.Values{"code": {code}}, sess))
	if rec.Code != http.StatusOK {
		t.Fatalf("good code: got %d, want 200", rec.Code)
	}
	if enabled, _ := env.Users.FindByID(u.ID); !enabled.TOTPEnabled {
		t.Error("2FA should be enabled")
	}
}

func TestTOTPURLRoundTrips(t *testing.T) {
	got, err := url.Parse(totpURL("a b@example.com", "SECRET"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Scheme != "otpauth" || got.Host != "totp" {
		t.Errorf("unexpected url %s", got)
	}
	if q := got.Query(); q.Get("secret") != "SECRET" || q.Get("issuer") != totpIssuer {
		t.Errorf("unexpected query %v", q)
	}
}

// sessionFromResponse loads the session whose cookie rec set.
func sessionFromResponse(t *testing.T, sessions *session.Store, rec *httptest.ResponseRecorder) *session.Data {
	t.Helper()
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie set")
	}
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	data, err := sessions.Get(context.Background(), r)
	if err != nil || data == nil {
		t.Fatalf("load session: %v", err)
	}
	return data
}

func TestRoleChangeSignsUserOut(t *testing.T) {
	env := newTestEnv(t)
	sessions := withSessions(t, env)
	auth := NewAuth(env.Deps)
	target := env.Users.add("editor@example.com", "correct-horse", models.RoleEditor)

	rec := httptest.NewRecorder()
	auth.LoginSubmit(rec, formRequest("/login", url.Values{"email": {target.Email}, "password": {"correct-horse"}}, nil))
	sessionFromResponse(t, sessions, rec)
	cookie := rec.Result().Cookies()[0]

	admin := testSession(uuid.New(), models.RoleAdmin)
	env.API.UpdateUserRole(httptest.NewRecorder(), newRequest(http.MethodPatch, "/api/admin/users",
		map[string]any{"id": target.ID, "role": "VIEWER"}, admin))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)
	if data, _ := sessions.Get(context.Background(), r); data != nil {
		t.Errorf("session should be gone after a role change, got %+v", data)
	}
}
