package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
	"github.com/and161185/minuteminds/internal/service"
)

// multipartMemory is how much of a multipart body is buffered in memory before spilling to disk.
const multipartMemory = 32 << 20

var errTranscriptionNotFound = fmt.Errorf("%w: transcription not found", errs.ErrNotFound)

// transcriptionID parses the {id} path parameter. Malformed ids cannot exist, so they are 404.
func transcriptionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errTranscriptionNotFound
	}
	return id, nil
}

func (rt *Router) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
				"error": fmt.Sprintf("file exceeds the %d byte upload limit", tooLarge.Limit),
			})
			return
		}
		rt.writeError(w, r, fmt.Errorf("%w: no file uploaded", errs.ErrValidation))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		rt.writeError(w, r, fmt.Errorf("%w: no file uploaded", errs.ErrValidation))
		return
	}
	defer file.Close()

	denoise, _ := strconv.ParseBool(strings.TrimSpace(r.FormValue("denoise")))
	t, err := rt.svc.Pipeline.Transcribe(r.Context(), mustUserID(r), service.Upload{
		Filename: header.Filename,
		Body:     file,
		Denoise:  denoise,
	})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transcription_id": t.ID,
		"transcription":    t.Text,
		"segments":         t.Segments,
	})
}

func (rt *Router) handleListTranscriptions(w http.ResponseWriter, r *http.Request) {
	list, err := rt.svc.Transcripts.List(r.Context(), mustUserID(r))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transcriptions": list})
}

func (rt *Router) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results, err := rt.svc.Transcripts.Search(r.Context(), mustUserID(r), q)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"count":   len(results),
		"results": results,
	})
}

func (rt *Router) handleSummarize(w http.ResponseWriter, r *http.Request) {
	id, err := transcriptionID(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	res, err := rt.svc.Enrich.Summarize(r.Context(), mustUserID(r), id)
	if err != nil {
		rt.writeError(w, r, notFoundAs(err, "transcription"))
		return
	}
	if res.Message != "" {
		writeJSON(w, http.StatusOK, map[string]any{"summary": res.Summary, "message": res.Message})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": res.Summary, "bullet_points": res.BulletPoints})
}

func (rt *Router) handleExtractItems(w http.ResponseWriter, r *http.Request) {
	id, err := transcriptionID(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	items, err := rt.svc.Enrich.ExtractKeyItems(r.Context(), mustUserID(r), id)
	if err != nil {
		rt.writeError(w, r, notFoundAs(err, "transcription"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key_items": items})
}

func (rt *Router) handleReplaceKeyItems(w http.ResponseWriter, r *http.Request) {
	id, err := transcriptionID(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var body struct {
		KeyItems json.RawMessage `json:"key_items"`
	}
	if err := decodeJSON(r, &body); err != nil {
		rt.writeError(w, r, err)
		return
	}
	raw := strings.TrimSpace(string(body.KeyItems))
	if raw == "" || raw == "null" {
		rt.writeError(w, r, fmt.Errorf("%w: key_items array required", errs.ErrValidation))
		return
	}
	var items []model.KeyItem
	if err := json.Unmarshal(body.KeyItems, &items); err != nil || items == nil {
		rt.writeError(w, r, fmt.Errorf("%w: key_items must be a list", errs.ErrValidation))
		return
	}
	if err := rt.svc.Enrich.ReplaceKeyItems(r.Context(), mustUserID(r), id, items); err != nil {
		rt.writeError(w, r, notFoundAs(err, "transcription"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Key items updated"})
}

func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := transcriptionID(r)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	f, err := rt.svc.Transcripts.Export(r.Context(), mustUserID(r), id, r.URL.Query().Get("format"))
	if err != nil {
		rt.writeError(w, r, notFoundAs(err, "transcription"))
		return
	}
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Body)
}
