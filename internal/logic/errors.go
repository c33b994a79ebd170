package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/vartificial/match-predictor/internal/models"
)

// ErrNotTrained is returned by operations that need a fitted ensemble.
// Predict never returns it; it falls back to the heuristic instead.
var ErrNotTrained = errors.New("models not trained")

// DataInsufficientError reports a class too small for stratified cross-validation.
type DataInsufficientError struct {
	Class models.Outcome
	Have  int
	Need  int
}

func (e *DataInsufficientError) Error() string {
	return fmt.Sprintf("insufficient training data: %s has %d examples, need at least %d", e.Class, e.Have, e.Need)
}

// TrainingTimeoutError is returned when training does not finish before its deadline.
type TrainingTimeoutError struct {
	Timeout time.Duration
	Err     error
}

func (e *TrainingTimeoutError) Error() string {
	return fmt.Sprintf("training did not finish within %s: %v", e.Timeout, e.Err)
}

func (e *TrainingTimeoutError) Unwrap() error { return e.Err }
