package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

type translateRequest struct {
	Text   string `json:"text"`
	Target string `json:"target"`
}

func (rt *Router) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body translateRequest
	if err := decodeJSON(r, &body); err != nil {
		rt.writeError(w, r, err)
		return
	}
	out, err := rt.svc.Translate.Translate(r.Context(), mustUserID(r), body.Text, body.Target)
	if err != nil {
		status, msg := statusOf(err)
		if status >= http.StatusInternalServerError {
			rt.log.Warn("translation failed", zap.Error(err))
			writeJSON(w, status, map[string]string{"translatedText": "", "error": msg})
			return
		}
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"translatedText": out})
}
