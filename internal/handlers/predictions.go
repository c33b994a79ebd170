package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vartificial/match-predictor/internal/corpus"
	"github.com/vartificial/match-predictor/internal/logic"
	"github.com/vartificial/match-predictor/internal/models"
)

// Predict forecasts a match outcome from its statistics
// @Summary Predict Match Outcome
// @Description Runs every ensemble model and ranks the forecasts by confidence. Falls back to a heuristic while untrained.
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.PredictRequest true "Match statistics"
// @Success 200 {object} models.PredictionResult
// @Failure 400 {object} map[string]string "Missing or invalid field"
// @Failure 500 {object} map[string]string
// @Router /api/predict [post]
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var req models.PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.decodeError(w, err)
		return
	}
	if err := h.validateStruct(&req); err != nil {
		h.fieldError(w, err)
		return
	}

	preds, err := h.prediction.Predict(r.Context(), req.Stats())
	if err != nil {
		h.logger.Errorw("Prediction failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, models.PredictionResult{
		Success:     true,
		Predictions: preds,
	})
}

// GetModels returns cross-validated performance of the trained models
// @Summary Model Performance
// @Tags Predictions
// @Produce json
// @Success 200 {object} models.ModelsReport
// @Failure 500 {object} map[string]string "Models not trained"
// @Router /api/models [get]
func (h *Handler) GetModels(w http.ResponseWriter, r *http.Request) {
	report, err := h.prediction.ModelPerformance(r.Context())
	if errors.Is(err, logic.ErrNotTrained) {
		h.errorResponse(w, http.StatusInternalServerError, "Models not trained")
		return
	}
	if err != nil {
		h.logger.Errorw("Failed to get model performance", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}

// trainRequest optionally carries labelled rows: eight raw stats then the outcome code.
type trainRequest struct {
	Rows [][]float64 `json:"rows"`
}

// Train retrains the ensemble
// @Summary Retrain Models
// @Description Retrains on the supplied rows, or on the configured corpus when the body is empty
// @Tags Predictions
// @Accept json
// @Produce json
// @Security AdminToken
// @Success 200 {object} models.TrainingReport
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string "Insufficient training data"
// @Failure 504 {object} map[string]string "Training timed out"
// @Router /api/train [post]
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.decodeError(w, err)
		return
	}

	var (
		report *models.TrainingReport
		err    error
	)
	if len(req.Rows) > 0 {
		report, err = h.prediction.TrainRows(r.Context(), req.Rows)
	} else {
		report, err = h.prediction.Retrain(r.Context())
	}
	if err != nil {
		h.trainError(w, err)
		return
	}

	h.jsonResponse(w, http.StatusOK, report)
}

func (h *Handler) trainError(w http.ResponseWriter, err error) {
	var insufficient *logic.DataInsufficientError
	var timeout *logic.TrainingTimeoutError
	var rowErr *corpus.RowError

	switch {
	case errors.As(err, &insufficient):
		h.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &timeout):
		h.errorResponse(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &rowErr), errors.Is(err, corpus.ErrEmptyCorpus):
		h.errorResponse(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Errorw("Training failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) decodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.errorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		h.fieldError(w, verr)
		return
	}
	h.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
}

// fieldError answers with the field name only; the reason goes to the log.
func (h *Handler) fieldError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		h.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Debugw("Rejected predict request", "field", verr.Field, "reason", verr.Reason)
	if verr.Missing {
		h.errorResponse(w, http.StatusBadRequest, "Missing field: "+verr.Field)
		return
	}
	h.errorResponse(w, http.StatusBadRequest, "Invalid field: "+verr.Field)
}
