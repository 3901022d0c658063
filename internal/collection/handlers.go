package collection

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cointracker/internal/catalog"
	"cointracker/internal/normalize"
)

// maxUploadSize caps photo uploads; high-resolution phone photos of
// coins routinely exceed 10MB.
const maxUploadSize = int64(50 << 20)

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.setCORSHeaders(w)
	s.writeJSON(w, code, map[string]string{"error": message})
}

// handleIndex serves the embedded single-page interface.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleSubmitPhoto accepts a multipart coin photo, scans it and runs
// the resolution pipeline.
func (s *Server) handleSubmitPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			msg = "Photo is too large. Maximum size is 50MB."
		}
		s.writeError(w, http.StatusBadRequest, msg)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		s.writeError(w, http.StatusBadRequest, "No photo was selected. Please choose a file to upload.")
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		s.writeError(w, http.StatusBadRequest, "Photo is too large. Maximum size is 50MB.")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		s.writeError(w, http.StatusInternalServerError, "Error reading photo. Please try again.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".jpg", ".jpeg":
			contentType = "image/jpeg"
		case ".png":
			contentType = "image/png"
		case ".pdf":
			contentType = "application/pdf"
		case ".heic":
			contentType = "image/heic"
		case ".heif":
			contentType = "image/heif"
		default:
			contentType = "application/octet-stream"
		}
	}
	contentType = strings.ToLower(strings.TrimSpace(contentType))

	asDuplicate := r.FormValue("as_duplicate") == "true"

	outcome, err := s.service.SubmitPhoto(data, contentType, asDuplicate, time.Now())
	if err != nil {
		slog.Error("Error processing photo submission", "filename", header.Filename, "error", err)
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

// submitRequest is a typed text submission: the collector (or the
// chat layer) supplies the raw fields directly.
type submitRequest struct {
	Value       string `json:"value"`
	Country     string `json:"country"`
	Year        string `json:"year"`
	Mint        string `json:"mint"`
	AsDuplicate bool   `json:"as_duplicate"`
}

// handleSubmitText runs a typed guess through the resolution pipeline.
func (s *Server) handleSubmitText(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	guess := normalize.Guess{
		RawValue:   req.Value,
		RawCountry: req.Country,
		RawYear:    req.Year,
		RawMint:    req.Mint,
	}
	outcome, err := s.service.Submit(guess, req.AsDuplicate, time.Now())
	if err != nil {
		slog.Error("Error processing submission", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

// choiceRequest carries the exact key the collector picked from an
// ambiguous candidate list. Fields must be canonical.
type choiceRequest struct {
	Value       string `json:"value"`
	Country     string `json:"country"`
	Year        int    `json:"year"`
	Mint        string `json:"mint"`
	AsDuplicate bool   `json:"as_duplicate"`
}

// handleChoice applies a disambiguation pick.
func (s *Server) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req choiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	value, ok := catalog.DenominationFromString(req.Value)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid denomination: "+req.Value)
		return
	}
	key := catalog.Key{
		Value:   value,
		Country: catalog.Country(req.Country),
		Year:    req.Year,
		Mint:    strings.ToUpper(strings.TrimSpace(req.Mint)),
	}

	outcome, err := s.service.ResolveChoice(key, req.AsDuplicate, time.Now())
	if err != nil {
		slog.Error("Error resolving choice", "key", key.String(), "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	s.writeJSON(w, http.StatusOK, outcome)
}

// statsResponse bundles the aggregate stats with their breakdowns.
type statsResponse struct {
	Stats     Stats     `json:"stats"`
	Breakdown Breakdown `json:"breakdown"`
}

// handleStats reports collection progress.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		Stats:     s.service.Stats(),
		Breakdown: s.service.StatsBreakdown(),
	})
}

// handleMissing lists variants not yet owned.
func (s *Server) handleMissing(w http.ResponseWriter, r *http.Request) {
	missing := s.service.Missing()
	if missing == nil {
		missing = []catalog.Variant{}
	}
	s.writeJSON(w, http.StatusOK, missing)
}

// handleEvents returns the submission audit log, oldest first.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.Events()
	if err != nil {
		slog.Error("Error listing events", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if events == nil {
		events = []*SubmissionEvent{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

// handleSeries lists all variants of one country (optionally one
// year) with their ownership state.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	rawCountry := r.URL.Query().Get("country")
	country, ok := normalize.CountryName(rawCountry)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Unknown country: "+rawCountry)
		return
	}

	year := 0
	if rawYear := r.URL.Query().Get("year"); rawYear != "" {
		var err error
		year, err = strconv.Atoi(rawYear)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Invalid year: "+rawYear)
			return
		}
	}

	series, err := s.service.Series(country, year)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, series)
}
