package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/niksmo/storefront/internal/core/port"
)

type SessionHandler struct {
	session port.SessionManager
}

func RegisterSession(mux *http.ServeMux, session port.SessionManager) {
	h := SessionHandler{session}
	mux.HandleFunc("GET /v1/session", h.GetSession)
	mux.HandleFunc("POST /v1/session/login", h.PostLogin)
	mux.HandleFunc("POST /v1/session/logout", h.PostLogout)
}

func (h SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, fromSession(h.session.Snapshot()))
}

func (h SessionHandler) PostLogin(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostLogin"
	log := slog.With("op", op)

	var cred Credentials
	if !decodeJSON(w, r, &cred) {
		return
	}

	s, err := h.session.Login(r.Context(), cred.Email, cred.Password)
	if err != nil {
		writeError(w, err, "Login failed")
		log.Warn("login failed", "err", err)
		return
	}
	writeJSON(w, http.StatusOK, fromSession(s))
}

func (h SessionHandler) PostLogout(w http.ResponseWriter, r *http.Request) {
	const op = "SessionHandler.PostLogout"

	if err := h.session.Logout(r.Context()); err != nil {
		slog.Error("failed to clear persisted session", "op", op, "err", err)
	}
	writeJSON(w, http.StatusOK, fromSession(h.session.Snapshot()))
}
