package httpserver

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"reviews_importer/internal/app"
	"reviews_importer/internal/domain"
	"reviews_importer/internal/lang"
)

type Handlers struct {
	Q        *app.QueryService
	Importer *app.ImportService

	// AdminToken authorizes the manual import trigger; empty disables it.
	AdminToken string
	// Cache backs the one-time nonce check on the manual trigger.
	Cache domain.Cache
	// SiteLocale is the fallback when no usable lang is requested.
	SiteLocale string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews", h.listReviews)
	s.mux.Get("/v1/stats", h.stats)
	s.mux.Get("/v1/import/status", h.importStatus)
	s.mux.Post("/v1/import", h.importNow)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	code := lang.Short(r.URL.Query().Get("lang"))
	if code == "" {
		code = lang.Short(strings.SplitN(r.Header.Get("Accept-Language"), ",", 2)[0])
	}
	if code == "" {
		code = lang.Short(h.SiteLocale)
	}

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	out, err := h.Q.ListReviews(r.Context(), domain.ReviewsQuery{Lang: code, Limit: limit})
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "listing reviews failed")
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Language", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listReviews body")
	}
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.Q.AggregateStats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "reading stats failed")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handlers) importStatus(w http.ResponseWriter, r *http.Request) {
	rs, err := h.Q.RunStatus(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Internal", "reading import status failed")
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

// importNow runs one reconciliation pass synchronously. Requires the admin
// bearer token and a one-time nonce so a replayed request can't retrigger.
func (h *Handlers) importNow(w http.ResponseWriter, r *http.Request) {
	if h.AdminToken == "" {
		writeProblem(w, http.StatusForbidden, "Disabled", "manual import trigger is not configured")
		return
	}
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(tok), []byte(h.AdminToken)) != 1 {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
		return
	}

	nonce := strings.TrimSpace(r.Header.Get("X-Import-Nonce"))
	if nonce == "" {
		writeProblem(w, http.StatusBadRequest, "Missing nonce", "X-Import-Nonce header is required")
		return
	}
	if h.Cache != nil {
		ok, err := h.Cache.SetNX(r.Context(), "import:nonce:"+nonce, "1", 10*time.Minute)
		if err == nil && !ok {
			writeProblem(w, http.StatusConflict, "Replay", "nonce already used")
			return
		}
	}

	switch err := h.Importer.Run(r.Context(), app.TriggerManual); {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{"status": "done"})
	case errors.Is(err, domain.ErrRunInProgress):
		writeProblem(w, http.StatusConflict, "Busy", "an import run is already in progress")
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": err.Error()})
	}
}
