// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
	"researchoffice/internal/render"
	"researchoffice/internal/session"
	"researchoffice/internal/store"
)

// totpIssuer is shown by authenticator apps next to the account.
const totpIssuer = "Research Office"

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	*Deps
}

// NewAuth creates a new Auth handler group.
func NewAuth(deps *Deps) *Auth {
	return &Auth{Deps: deps}
}

func (a *Auth) form(w http.ResponseWriter, r *http.Request, status int, name, title string, data map[string]any) {
	a.Renderer.PageStatus(w, r, status, "site/"+name, &render.PageData{
		Title: title,
		Site:  a.site(),
		Data:  data,
	})
}

// LoginPage renders the login form.
func (a *Auth) LoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in with 2FA complete, redirect to dashboard.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.TwoFADone {
		http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
		return
	}
	a.form(w, r, http.StatusOK, "login", "Sign In", nil)
}

// LoginSubmit processes the login form. Users who enrolled in 2FA continue
// to the verification step; everyone else is signed in directly.
func (a *Auth) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := normalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")

	user, err := a.Users.FindByEmail(email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		a.form(w, r, http.StatusInternalServerError, "login", "Sign In", map[string]any{
			"Error": "An unexpected error occurred.", "Email": email,
		})
		return
	}
	if user == nil || !a.Users.CheckPassword(user, password) {
		slog.Info("login rejected", "email", email, "remote", r.RemoteAddr)
		a.form(w, r, http.StatusUnauthorized, "login", "Sign In", map[string]any{
			"Error": "Invalid email or password.", "Email": email,
		})
		return
	}

	needs2FA := user.Needs2FAVerify()
	if err := a.startSession(w, r, user, !needs2FA); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if needs2FA {
		http.Redirect(w, r, middleware.TwoFAPath, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
}

func (a *Auth) startSession(w http.ResponseWriter, r *http.Request, user *models.User, twoFADone bool) error {
	_, err := a.Sessions.Create(r.Context(), w, &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		TwoFADone: twoFADone,
	})
	return err
}

// SignupPage renders the registration form.
func (a *Auth) SignupPage(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil && sess.TwoFADone {
		http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
		return
	}
	a.form(w, r, http.StatusOK, "signup", "Sign Up", nil)
}

// SignupSubmit registers a VIEWER account and signs it in.
func (a *Auth) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := normalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")
	echo := map[string]any{"Name": name, "Email": email}

	if msg := validateSignup(name, email, password); msg != "" {
		echo["Error"] = msg
		a.form(w, r, http.StatusBadRequest, "signup", "Sign Up", echo)
		return
	}

	existing, err := a.Users.FindByEmail(email)
	if err != nil {
		slog.Error("signup lookup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		echo["Error"] = "An account with this email already exists."
		a.form(w, r, http.StatusConflict, "signup", "Sign Up", echo)
		return
	}

	user, err := a.Users.Create(email, password, name, models.RoleViewer)
	if errors.Is(err, store.ErrDuplicate) {
		echo["Error"] = "An account with this email already exists."
		a.form(w, r, http.StatusConflict, "signup", "Sign Up", echo)
		return
	}
	if err != nil {
		slog.Error("create user failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("user signed up", "user_id", user.ID)

	if err := a.startSession(w, r, user, true); err != nil {
		slog.Error("session create failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
}

// TwoFAVerifyPage renders the 2FA code entry form.
func (a *Auth) TwoFAVerifyPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	if sess.TwoFADone {
		http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
		return
	}
	a.form(w, r, http.StatusOK, "2fa_verify", "Two-Factor Authentication", nil)
}

// TwoFAVerifySubmit validates the TOTP code and completes authentication.
func (a *Auth) TwoFAVerifySubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	user, err := a.Users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !user.Needs2FAVerify() {
		http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
		return
	}

	if !totp.Validate(strings.TrimSpace(r.FormValue("code")), *user.TOTPSecret) {
		a.form(w, r, http.StatusUnauthorized, "2fa_verify", "Two-Factor Authentication", map[string]any{
			"Error": "Invalid code. Please try again.",
		})
		return
	}

	sess.TwoFADone = true
	if err := a.Sessions.Update(r.Context(), r, sess); errors.Is(err, session.ErrGone) {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	} else if err != nil {
		slog.Error("session update failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, middleware.DashboardURL, http.StatusSeeOther)
}

// TwoFASetupPage generates a TOTP secret for the signed-in user and shows
// it as a QR code. 2FA becomes active only after TwoFASetupSubmit confirms
// a code.
func (a *Auth) TwoFASetupPage(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	user, err := a.Users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa setup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPEnabled {
		a.setupPage(w, r, http.StatusOK, map[string]any{"Enabled": true})
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := a.Users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data, err := qrData(key)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	a.setupPage(w, r, http.StatusOK, data)
}

// TwoFASetupSubmit confirms enrollment with a code from the authenticator.
func (a *Auth) TwoFASetupSubmit(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}

	user, err := a.Users.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa setup failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if user.TOTPSecret == nil {
		http.Redirect(w, r, "/dashboard/2fa/setup", http.StatusSeeOther)
		return
	}

	if !totp.Validate(strings.TrimSpace(r.FormValue("code")), *user.TOTPSecret) {
		data := map[string]any{}
		if key, err := otp.NewKeyFromURL(totpURL(user.Email, *user.TOTPSecret)); err == nil {
			if qr, err := qrData(key); err == nil {
				data = qr
			}
		}
		data["Error"] = "Invalid code. Please try again."
		a.setupPage(w, r, http.StatusBadRequest, data)
		return
	}

	if err := a.Users.EnableTOTP(user.ID); err != nil {
		slog.Error("enable totp failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	slog.Info("2fa enabled", "user_id", user.ID)
	a.setupPage(w, r, http.StatusOK, map[string]any{"Enabled": true, "Success": true})
}

func (a *Auth) setupPage(w http.ResponseWriter, r *http.Request, status int, data map[string]any) {
	a.Renderer.PageStatus(w, r, status, "dashboard/2fa_setup", &render.PageData{
		Title:   "Two-Factor Authentication",
		Section: "2fa",
		Site:    a.site(),
		Data:    data,
	})
}

// Logout destroys the session and redirects to the login page.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// totpURL rebuilds the otpauth URL for a stored secret.
func totpURL(email, secret string) string {
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + totpIssuer + ":" + email,
		RawQuery: url.Values{"secret": {secret}, "issuer": {totpIssuer}}.Encode(),
	}
	return u.String()
}

// qrData renders the enrollment QR code as a base64 PNG.
func qrData(key *otp.Key) (map[string]any, error) {
	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"QRCode": base64.StdEncoding.EncodeToString(png),
		"Secret": key.Secret(),
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
