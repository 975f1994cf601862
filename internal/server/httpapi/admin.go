package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/minuteminds/internal/errs"
)

func (rt *Router) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := rt.svc.Admin.ListUsers(r.Context(), mustUserID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (rt *Router) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		rt.writeError(w, r, fmt.Errorf("%w: user not found", errs.ErrNotFound))
		return
	}
	if err := rt.svc.Admin.DeleteUser(r.Context(), mustUserID(r), id); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (rt *Router) handleListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			rt.writeError(w, r, fmt.Errorf("%w: limit must be an integer", errs.ErrValidation))
			return
		}
		limit = n
	}
	logs, err := rt.svc.Admin.ListLogs(r.Context(), mustUserID(r), q.Get("action"), limit)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (rt *Router) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	a, err := rt.svc.Admin.Analytics(r.Context(), mustUserID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
