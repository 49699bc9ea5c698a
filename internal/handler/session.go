package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/joki-boost/internal/domain/auth"
)

// Login starts an admin session and sets the session cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var username, password string
	err := decodeObject(w, r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "username":
			username, err = d.Str()
		case "password":
			password, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Every successful login gets a fresh token; the previous one is revoked.
	sess := h.sessions.New()
	if !h.auth.Login(sess, username, password) {
		zctx.From(r.Context()).Info("Admin login rejected", zap.String("username", username))
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if prev := h.session(r); prev != nil {
		h.sessions.Delete(prev.Token)
	}
	h.sessions.Save(sess)

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("username")
		e.Str(sess.Username)
		e.ObjEnd()
	})
}

// Logout ends the admin session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := h.session(r); sess != nil {
		h.auth.Logout(sess)
		h.sessions.Save(sess)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(r *http.Request) *auth.Session {
	c, err := r.Cookie(h.cookieName)
	if err != nil {
		return nil
	}
	sess, ok := h.sessions.Get(c.Value)
	if !ok {
		return nil
	}
	return sess
}

func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.auth.IsLoggedIn(h.session(r)) {
			writeError(w, http.StatusUnauthorized, "admin login required")
			return
		}
		next(w, r)
	})
}
