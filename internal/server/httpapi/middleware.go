package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/minuteminds/internal/errs"
)

type ctxKey string

const userIDKey ctxKey = "mm.userID"

// WithUserID stores the authenticated user ID in ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the user ID stored by the auth middleware.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func mustUserID(r *http.Request) uuid.UUID {
	id, _ := UserIDFromCtx(r.Context())
	return id
}

// bearerToken extracts "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, error) {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if v == "" {
		return "", errTokenMissing
	}
	if len(v) < 7 || !strings.EqualFold(v[:7], "bearer ") {
		return "", errInvalidTokenFormat
	}
	t := strings.TrimSpace(v[7:])
	if t == "" {
		return "", errInvalidTokenFormat
	}
	return t, nil
}

var (
	errTokenMissing       = fmt.Errorf("%w: token is missing", errs.ErrUnauthorized)
	errInvalidTokenFormat = fmt.Errorf("%w: invalid token format", errs.ErrUnauthorized)
)

func (rt *Router) requireUser(next http.Handler) http.Handler {
	return rt.authorize(next, rt.svc.Auth.Authenticate)
}

func (rt *Router) requireAdmin(next http.Handler) http.Handler {
	return rt.authorize(next, rt.svc.Auth.AuthorizeAdmin)
}

func (rt *Router) authorize(next http.Handler, check func(context.Context, string) (uuid.UUID, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok, err := bearerToken(r)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		uid, err := check(r.Context(), tok)
		if err != nil {
			rt.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
	})
}

// logRequests logs metadata only, never payloads.
func (rt *Router) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		rt.log.Info("http",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", r.RemoteAddr),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (rt *Router) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				rt.log.Error("panic",
					zap.Any("reason", rec),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", r.URL.Path),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
