package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/voltcert/certsync/internal/export"
	"github.com/voltcert/certsync/internal/model"
	"github.com/voltcert/certsync/internal/register"
	"github.com/voltcert/certsync/internal/report"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("response encode failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChecklist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, export.Checklist())
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := report.ListOptions{}
	opts.Page, _ = strconv.Atoi(q.Get("page"))
	opts.PageSize, _ = strconv.Atoi(q.Get("page_size"))
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))

	writeJSON(w, http.StatusOK, s.store.List(r.Context(), ownerID(r), opts))
}

type createRequest struct {
	Kind      model.ReportKind `json:"kind"`
	Payload   map[string]any   `json:"payload"`
	SubjectID string           `json:"subjectId"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.store.Create(r.Context(), ownerID(r), req.Kind, req.Payload, req.SubjectID)
	status := http.StatusCreated
	if !result.Success {
		status = http.StatusUnprocessableEntity
	} else if result.Recovered {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

func (s *Server) handleGetPayload(w http.ResponseWriter, r *http.Request) {
	payload := s.store.GetPayload(r.Context(), chi.URLParam(r, "id"), ownerID(r))
	if payload == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

type updateRequest struct {
	Payload         map[string]any `json:"payload"`
	SubjectID       string         `json:"subjectId"`
	ExpectedVersion int64          `json:"expectedVersion"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.store.Update(r.Context(), chi.URLParam(r, "id"), ownerID(r), req.Payload, req.SubjectID)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
		if result.Error == "report not found" {
			status = http.StatusNotFound
		}
	}
	writeJSON(w, status, result)
}

func (s *Server) handleVersionedUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := s.store.UpdateWithVersionCheck(r.Context(),
		chi.URLParam(r, "id"), ownerID(r), req.Payload, req.ExpectedVersion, req.SubjectID)

	status := http.StatusOK
	switch {
	case result.Conflict != nil:
		status = http.StatusConflict
	case !result.Success && result.Error == "report not found":
		status = http.StatusNotFound
	case !result.Success:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	vi := s.store.GetEditVersion(r.Context(), chi.URLParam(r, "id"), ownerID(r))
	if vi == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, vi)
}

type versionCheckRequest struct {
	ExpectedVersion int64 `json:"expectedVersion"`
}

func (s *Server) handleVersionCheck(w http.ResponseWriter, r *http.Request) {
	var req versionCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK,
		s.store.CheckVersionConflict(r.Context(), chi.URLParam(r, "id"), ownerID(r), req.ExpectedVersion))
}

func (s *Server) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	result := s.store.SoftDelete(r.Context(), chi.URLParam(r, "id"), ownerID(r))
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
		if result.Error == "report not found" {
			status = http.StatusNotFound
		}
	}
	writeJSON(w, status, result)
}

func (s *Server) handleFindByCertificateNumber(w http.ResponseWriter, r *http.Request) {
	certNo := r.URL.Query().Get("certificate_number")
	if certNo == "" {
		writeError(w, http.StatusBadRequest, "certificate_number query parameter is required")
		return
	}

	env, err := s.store.FindByCertificateNumber(r.Context(), ownerID(r), certNo)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if env == nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	result := s.store.List(r.Context(), ownerID(r), report.ListOptions{Limit: 10000})

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="certificate-register.xlsx"`)
	if err := register.WriteRegister(w, result.Items); err != nil {
		zap.L().Warn("register write failed", zap.Error(err))
	}
}

func decodeEIC(w http.ResponseWriter, r *http.Request) (*model.EICDocument, bool) {
	var doc model.EICDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid EIC document")
		return nil, false
	}
	return &doc, true
}

func (s *Server) handleExportValidate(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeEIC(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.ValidateForExport(doc))
}

func (s *Server) handleExportTransform(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeEIC(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.Transform(doc))
}

func (s *Server) handleExportSummary(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeEIC(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, export.Summarize(doc))
}
