// Package corpus loads labelled training matches.
//
// The canonical schema has nine integer columns, in this order:
//
//	home_goals, away_goals, home_shots, away_shots,
//	home_shots_on_target, away_shots_on_target,
//	home_red_cards, away_red_cards, outcome
//
// where outcome is 0 (Home Win), 1 (Draw) or 2 (Away Win). The reference
// corpus of Premier League 2022-23 matches is embedded in the binary.
package corpus

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vartificial/match-predictor/internal/models"
)

//go:embed reference.csv
var referenceCSV []byte

// Columns is the header of a corpus CSV.
var Columns = []string{
	"home_goals", "away_goals",
	"home_shots", "away_shots",
	"home_shots_on_target", "away_shots_on_target",
	"home_red_cards", "away_red_cards",
	"outcome",
}

// StatColumns is the number of raw-stat columns preceding the outcome.
const StatColumns = 8

var ErrEmptyCorpus = errors.New("corpus is empty")

// Source yields a training corpus.
type Source interface {
	Load(ctx context.Context) ([]models.TrainingExample, error)
	Name() string
}

// RowError locates a malformed corpus row. Row numbers start at 1 and exclude the header.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Reference returns the embedded reference corpus.
func Reference() []models.TrainingExample {
	examples, err := ReadCSV(bytes.NewReader(referenceCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded corpus is invalid: %v", err))
	}
	return examples
}

// ReadCSV parses a corpus in the canonical schema. A header row is optional.
// The outcome column must agree with the goal counts.
func ReadCSV(r io.Reader) ([]models.TrainingExample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Columns)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	var examples []models.TrainingExample
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
		if row == 0 && strings.EqualFold(strings.TrimSpace(record[0]), Columns[0]) {
			continue
		}
		row++

		values := make([]float64, len(record))
		for i, field := range record {
			n, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return nil, &RowError{Row: row, Err: fmt.Errorf("column %s: %w", Columns[i], err)}
			}
			values[i] = float64(n)
		}
		ex, err := exampleFromRow(values)
		if err != nil {
			return nil, &RowError{Row: row, Err: err}
		}
		if ex.Outcome != ex.Stats.Outcome() {
			return nil, &RowError{Row: row, Err: fmt.Errorf("outcome %v contradicts score %d-%d", ex.Outcome, ex.Stats.HomeGoals, ex.Stats.AwayGoals)}
		}
		examples = append(examples, ex)
	}

	if len(examples) == 0 {
		return nil, ErrEmptyCorpus
	}
	return examples, nil
}

// FromRows converts labelled numeric rows: the first eight columns are raw
// stats, the last is the integer outcome code. Values must be non-negative
// integers. The label is taken as given.
func FromRows(rows [][]float64) ([]models.TrainingExample, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyCorpus
	}
	examples := make([]models.TrainingExample, len(rows))
	for i, values := range rows {
		ex, err := exampleFromRow(values)
		if err != nil {
			return nil, &RowError{Row: i + 1, Err: err}
		}
		examples[i] = ex
	}
	return examples, nil
}

func exampleFromRow(values []float64) (models.TrainingExample, error) {
	if len(values) != StatColumns+1 {
		return models.TrainingExample{}, fmt.Errorf("expected %d columns, got %d", StatColumns+1, len(values))
	}
	ints := make([]int, len(values))
	for i, v := range values {
		if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
			return models.TrainingExample{}, fmt.Errorf("column %s: %v is not a non-negative integer", Columns[i], v)
		}
		ints[i] = int(v)
	}

	outcome := models.Outcome(ints[StatColumns])
	if !outcome.Valid() {
		return models.TrainingExample{}, fmt.Errorf("unknown outcome code %d", ints[StatColumns])
	}

	return models.TrainingExample{
		Stats: models.RawMatchStats{
			HomeGoals:         ints[0],
			AwayGoals:         ints[1],
			HomeShots:         ints[2],
			AwayShots:         ints[3],
			HomeShotsOnTarget: ints[4],
			AwayShotsOnTarget: ints[5],
			HomeRedCards:      ints[6],
			AwayRedCards:      ints[7],
		},
		Outcome: outcome,
	}, nil
}

// EmbeddedSource serves the reference corpus.
type EmbeddedSource struct{}

func (EmbeddedSource) Name() string { return "embedded" }

func (EmbeddedSource) Load(ctx context.Context) ([]models.TrainingExample, error) {
	return ReadCSV(bytes.NewReader(referenceCSV))
}

// FileSource reads a corpus CSV from disk on every load.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Load(ctx context.Context) ([]models.TrainingExample, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
