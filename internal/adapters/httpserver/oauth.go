package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	stateCookie     = "oauth_state"
	googleUserInfo  = "https://www.googleapis.com/oauth2/v3/userinfo"
	maxUserInfoBody = 1 << 16
)

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.OAuth == nil {
		writeError(w, http.StatusServiceUnavailable, "google sign-in is not configured")
		return
	}
	state := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: state, Path: "/api/UserModel/google", MaxAge: 300, HttpOnly: true, Secure: r.TLS != nil, SameSite: http.SameSiteLaxMode})
	http.Redirect(w, r, s.OAuth.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.OAuth == nil {
		writeError(w, http.StatusServiceUnavailable, "google sign-in is not configured")
		return
	}
	q := r.URL.Query()
	c, _ := r.Cookie(stateCookie)
	if c == nil || c.Value == "" || c.Value != q.Get("state") {
		writeError(w, http.StatusBadRequest, "invalid oauth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/api/UserModel/google", MaxAge: -1})

	tok, err := s.OAuth.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("exchange oauth")
		writeError(w, http.StatusBadRequest, "google sign-in failed")
		return
	}
	resp, err := s.OAuth.Client(r.Context(), tok).Get(googleUserInfo)
	if err != nil {
		log.Error().Err(err).Msg("userinfo")
		writeError(w, http.StatusBadGateway, "google sign-in failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("userinfo")
		writeError(w, http.StatusBadGateway, "google sign-in failed")
		return
	}
	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBody)).Decode(&info); err != nil || info.Email == "" {
		writeError(w, http.StatusBadRequest, "google account has no email")
		return
	}
	if !info.EmailVerified {
		writeError(w, http.StatusForbidden, "google email is not verified")
		return
	}
	sess, err := s.Users.SignInExternal(r.Context(), "google", info.Email, info.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeSession(w, sess)
}
