package httpapi

import (
	"net"
	"net/http"

	"github.com/gofrs/uuid/v5"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type userSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerRequest
	if err := decodeJSON(r, &body); err != nil {
		rt.writeError(w, r, err)
		return
	}
	id, err := rt.svc.Auth.Register(r.Context(), body.Email, body.Name, body.Password)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user_id": id,
	})
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := decodeJSON(r, &body); err != nil {
		rt.writeError(w, r, err)
		return
	}
	tokens, u, err := rt.svc.Auth.Login(r.Context(), body.Email, body.Password, clientIP(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   tokens.AccessToken,
		"user":    userSummary{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}

func (rt *Router) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	var body verifyRequest
	_ = decodeJSON(r, &body)
	if body.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "token is required"})
		return
	}
	ident, err := rt.svc.Auth.VerifyToken(r.Context(), body.Token)
	if err != nil {
		status, msg := statusOf(err)
		if status == http.StatusUnauthorized {
			msg = "invalid or expired token"
		}
		if status >= http.StatusInternalServerError {
			rt.writeError(w, r, err)
			return
		}
		writeJSON(w, status, map[string]any{"valid": false, "error": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": ident})
}

// clientIP is the peer address without the port; forwarded headers are not trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
