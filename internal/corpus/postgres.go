package corpus

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vartificial/match-predictor/internal/models"
)

// PgPool defines the subset of the PostgreSQL pool the corpus needs
type PgPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const selectTrainingMatches = `
	SELECT home_goals, away_goals, home_shots, away_shots,
	       home_shots_on_target, away_shots_on_target,
	       home_red_cards, away_red_cards, outcome
	FROM training_matches
	ORDER BY id`

// PostgresSource reads the training_matches table.
type PostgresSource struct {
	Pool PgPool
}

func (s PostgresSource) Name() string { return "postgres:training_matches" }

func (s PostgresSource) Load(ctx context.Context) ([]models.TrainingExample, error) {
	rows, err := s.Pool.Query(ctx, selectTrainingMatches)
	if err != nil {
		return nil, fmt.Errorf("query training matches: %w", err)
	}
	defer rows.Close()

	var data [][]float64
	for rows.Next() {
		var v [StatColumns + 1]int
		if err := rows.Scan(&v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7], &v[8]); err != nil {
			return nil, fmt.Errorf("scan training match: %w", err)
		}
		row := make([]float64, len(v))
		for i, n := range v {
			row[i] = float64(n)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training matches: %w", err)
	}

	return FromRows(data)
}

// Seed inserts examples into training_matches.
func Seed(ctx context.Context, pool PgPool, examples []models.TrainingExample) error {
	for i, ex := range examples {
		s := ex.Stats
		_, err := pool.Exec(ctx, `
			INSERT INTO training_matches (
				home_goals, away_goals, home_shots, away_shots,
				home_shots_on_target, away_shots_on_target,
				home_red_cards, away_red_cards, outcome
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			s.HomeGoals, s.AwayGoals, s.HomeShots, s.AwayShots,
			s.HomeShotsOnTarget, s.AwayShotsOnTarget,
			s.HomeRedCards, s.AwayRedCards, int(ex.Outcome))
		if err != nil {
			return fmt.Errorf("insert training match %d: %w", i, err)
		}
	}
	return nil
}

// SeedIfEmpty seeds training_matches only when it has no rows. It returns
// the number of examples inserted.
func SeedIfEmpty(ctx context.Context, pool PgPool, examples []models.TrainingExample) (int, error) {
	rows, err := pool.Query(ctx, `SELECT count(*) FROM training_matches`)
	if err != nil {
		return 0, fmt.Errorf("count training matches: %w", err)
	}
	var n int
	for rows.Next() {
		if err := rows.Scan(&n); err != nil {
			rows.Close()
			return 0, fmt.Errorf("count training matches: %w", err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("count training matches: %w", err)
	}
	if n > 0 {
		return 0, nil
	}

	if err := Seed(ctx, pool, examples); err != nil {
		return 0, err
	}
	return len(examples), nil
}
