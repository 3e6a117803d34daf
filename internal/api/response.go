package api

import (
	"encoding/json"
	"net/http"

	"github.com/abhisek/tutorcore/internal/apierr"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

func jsonResponse(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes err as an error envelope and logs server faults.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	e := apierr.From(err)
	if e.Status >= http.StatusInternalServerError {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		h.log.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", e.Status, "error", err)
	}
	jsonResponse(w, errorEnvelope{Error: apiError{Message: e.Error(), Code: e.Code}}, e.Status)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_json", err)
	}
	return nil
}
