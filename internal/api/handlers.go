package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"parkinson-insight/internal/ml"
	"parkinson-insight/internal/storage"
)

const (
	defaultListLimit = 50
	maxBodyBytes     = 1 << 20
)

// PredictRequest is the body of /predict and /predict/ensemble.
type PredictRequest struct {
	Features *ml.FeatureVector `json:"features"`
	Model    string            `json:"model,omitempty"`
	UserID   string            `json:"userId,omitempty"`
}

// AssessRequest is the body of /assess/clinical.
type AssessRequest struct {
	Symptoms *ml.ClinicalSymptoms `json:"clinicalSymptoms"`
	Voice    *ml.AcousticFeatures `json:"voiceFeatures,omitempty"`
	UserID   string               `json:"userId,omitempty"`
}

// SelectResponse is the body returned by /select.
type SelectResponse struct {
	Model             ml.ModelID `json:"model"`
	VoiceFeatureCount int        `json:"voiceFeatureCount"`
	ClinicalScore     float64    `json:"clinicalScore"`
}

// ImportanceResponse is the body returned by /insights/importance.
type ImportanceResponse struct {
	Features map[ml.Feature]ml.FeatureStats `json:"features"`
	Top      []ml.Feature                   `json:"top"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Response headers.
const (
	// RecordIDHeader carries the id of the stored record when the request
	// named a user.
	RecordIDHeader = "X-Record-ID"
	// TotalCountHeader carries the user's total record count on listings.
	TotalCountHeader = "X-Total-Count"
)

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Features == nil {
		writeError(w, http.StatusBadRequest, "features are required", "")
		return
	}

	var res ml.PredictionResult
	if req.Model == "" {
		res = s.engine.PredictBest(*req.Features)
	} else {
		id, err := ml.ParseModelID(req.Model)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown model", err.Error())
			return
		}
		res, err = s.engine.Predict(id, *req.Features)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown model", err.Error())
			return
		}
	}

	kind := storage.KindSingle
	if res.ModelUsed == ml.ModelEnsemble {
		kind = storage.KindEnsemble
	}
	s.persist(w, req.UserID, kind, string(res.ModelUsed), req.Features, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEnsemble(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Features == nil {
		writeError(w, http.StatusBadRequest, "features are required", "")
		return
	}

	res := s.engine.Ensemble(*req.Features)
	s.persist(w, req.UserID, storage.KindEnsemble, string(ml.ModelEnsemble), req.Features, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAssessClinical(w http.ResponseWriter, r *http.Request) {
	var req AssessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Symptoms == nil {
		writeError(w, http.StatusBadRequest, "clinicalSymptoms are required", "")
		return
	}

	res := s.engine.Assess(*req.Symptoms, req.Voice)
	s.persist(w, req.UserID, storage.KindClinical, string(res.ModelUsed), req, res)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Features == nil {
		writeError(w, http.StatusBadRequest, "features are required", "")
		return
	}

	writeJSON(w, http.StatusOK, SelectResponse{
		Model:             ml.SelectBestModel(*req.Features),
		VoiceFeatureCount: req.Features.VoiceFeatureCount(),
		ClinicalScore:     req.Features.ClinicalSum(),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ml.Catalogue())
}

func (s *Server) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured", "")
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", v)
			return
		}
		limit = n
	}

	userID := mux.Vars(r)["userId"]
	records, err := s.store.ListPredictions(userID, limit)
	if err != nil {
		s.storageError(w, err)
		return
	}
	if records == nil {
		records = []storage.PredictionRecord{}
	}

	total, err := s.store.CountPredictions(userID)
	if err != nil {
		s.storageError(w, err)
		return
	}
	w.Header().Set(TotalCountHeader, strconv.Itoa(total))
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetPrediction(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured", "")
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required", "")
		return
	}

	rec, err := s.store.GetPrediction(userID, mux.Vars(r)["recordId"])
	if err != nil {
		s.storageError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePrediction(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "storage is not configured", "")
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "userId query parameter is required", "")
		return
	}

	id := mux.Vars(r)["recordId"]
	if err := s.store.DeletePrediction(userID, id); err != nil {
		s.storageError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("record_id", id).Msg("Prediction deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleImportance(w http.ResponseWriter, r *http.Request) {
	top := 3
	if v := r.URL.Query().Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "top must be a non-negative integer", v)
			return
		}
		top = n
	}

	tracker := s.engine.Tracker()
	if tracker == nil {
		writeJSON(w, http.StatusOK, ImportanceResponse{
			Features: map[ml.Feature]ml.FeatureStats{},
			Top:      []ml.Feature{},
		})
		return
	}

	writeJSON(w, http.StatusOK, ImportanceResponse{
		Features: tracker.Snapshot(),
		Top:      tracker.TopFeatures(top),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

// persist stores the request and result for userID. Failures are logged
// and counted but never fail the request.
func (s *Server) persist(w http.ResponseWriter, userID string, kind storage.RecordKind, model string, input, result any) {
	if userID == "" || s.store == nil {
		return
	}

	now := time.Now().UTC()
	rec := storage.PredictionRecord{
		ID:        storage.NewRecordID(s.opts.RecordPrefix, now),
		UserID:    userID,
		Timestamp: now,
		Kind:      kind,
		Model:     model,
	}

	var err error
	if rec.Features, err = json.Marshal(input); err == nil {
		rec.Result, err = json.Marshal(result)
	}
	if err == nil {
		err = s.store.SavePrediction(rec)
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.StorageErrorsInc()
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to store prediction")
		return
	}

	w.Header().Set(RecordIDHeader, rec.ID)
	if s.pub != nil {
		s.pub.Publish(rec)
	}
}

func (s *Server) storageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "prediction not found", "")
	case errors.Is(err, storage.ErrInvalidUserID):
		writeError(w, http.StatusBadRequest, "invalid user id", err.Error())
	default:
		if s.metrics != nil {
			s.metrics.StorageErrorsInc()
		}
		log.Error().Err(err).Msg("Storage read failed")
		writeError(w, http.StatusInternalServerError, "storage error", err.Error())
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Details: details})
}
