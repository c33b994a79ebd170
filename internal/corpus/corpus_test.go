package corpus

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vartificial/match-predictor/internal/models"
)

func TestReference(t *testing.T) {
	examples := Reference()
	if len(examples) != 90 {
		t.Fatalf("expected 90 reference matches, got %d", len(examples))
	}

	var counts [models.NumOutcomes]int
	for i, ex := range examples {
		if ex.Outcome != ex.Stats.Outcome() {
			t.Errorf("example %d: label %v disagrees with score", i, ex.Outcome)
		}
		counts[ex.Outcome]++
	}
	if counts != [models.NumOutcomes]int{51, 16, 23} {
		t.Errorf("class counts = %v, want [51 16 23]", counts)
	}

	first := examples[0].Stats
	want := models.RawMatchStats{HomeGoals: 2, AwayGoals: 0, HomeShots: 14, AwayShots: 8, HomeShotsOnTarget: 6, AwayShotsOnTarget: 3}
	if first != want {
		t.Errorf("first example = %+v, want %+v", first, want)
	}
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantRow int
	}{
		{name: "with header", input: strings.Join(Columns, ",") + "\n1,0,10,9,4,3,0,0,0\n", want: 1},
		{name: "without header", input: "1,1,10,9,4,3,0,0,1\n0,2,8,14,3,7,1,0,2\n", want: 2},
		{name: "comment lines", input: "# sample\n1,1,10,9,4,3,0,0,1\n", want: 1},
		{name: "contradicting label", input: "2,0,10,9,4,3,0,0,1\n", wantRow: 1},
		{name: "negative value", input: "1,0,10,9,4,3,0,0,0\n1,0,-1,9,4,3,0,0,0\n", wantRow: 2},
		{name: "not a number", input: "1,0,ten,9,4,3,0,0,0\n", wantRow: 1},
		{name: "bad outcome code", input: "1,0,10,9,4,3,0,0,7\n", wantRow: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantRow > 0 {
				var rowErr *RowError
				if !errors.As(err, &rowErr) {
					t.Fatalf("expected RowError, got %v", err)
				}
				if rowErr.Row != tt.wantRow {
					t.Errorf("Row = %d, want %d", rowErr.Row, tt.wantRow)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d examples, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(strings.Join(Columns, ",") + "\n"))
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestFromRows(t *testing.T) {
	examples, err := FromRows([][]float64{
		{2, 1, 15, 10, 8, 5, 0, 0, 0},
		{1, 1, 10, 10, 5, 5, 0, 0, 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if examples[1].Outcome != models.Draw {
		t.Errorf("outcome = %v, want Draw", examples[1].Outcome)
	}

	bad := [][][]float64{
		{{1, 2, 3}},
		{{1, 0, 10, 9, 4, 3, 0, 0, 3}},
		{{1.5, 0, 10, 9, 4, 3, 0, 0, 0}},
	}
	for _, rows := range bad {
		if _, err := FromRows(rows); err == nil {
			t.Errorf("FromRows(%v) should fail", rows)
		}
	}
	if _, err := FromRows(nil); !errors.Is(err, ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

// Mocks

type MockRows struct {
	pgx.Rows
	data [][]int
	pos  int
}

func (m *MockRows) Next() bool {
	m.pos++
	return m.pos <= len(m.data)
}

func (m *MockRows) Scan(dest ...any) error {
	row := m.data[m.pos-1]
	for i, d := range dest {
		*(d.(*int)) = row[i]
	}
	return nil
}

func (m *MockRows) Close()     {}
func (m *MockRows) Err() error { return nil }

type MockPgPool struct {
	QueryFunc func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execCount int
}

func (m *MockPgPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.QueryFunc(ctx, sql, args...)
}

func (m *MockPgPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execCount++
	return pgconn.CommandTag{}, nil
}

func TestPostgresSource(t *testing.T) {
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			if !strings.Contains(sql, "FROM training_matches") {
				t.Errorf("unexpected query: %s", sql)
			}
			return &MockRows{data: [][]int{
				{3, 0, 16, 5, 9, 2, 0, 0, 0},
				{0, 2, 6, 14, 2, 7, 0, 0, 2},
			}}, nil
		},
	}

	examples, err := PostgresSource{Pool: pool}.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(examples) != 2 || examples[1].Outcome != models.AwayWin {
		t.Errorf("unexpected examples: %+v", examples)
	}
}

func TestPostgresSource_QueryError(t *testing.T) {
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, errors.New("connection refused")
		},
	}
	if _, err := (PostgresSource{Pool: pool}).Load(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestSeed(t *testing.T) {
	pool := &MockPgPool{}
	if err := Seed(context.Background(), pool, Reference()[:5]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.execCount != 5 {
		t.Errorf("expected 5 inserts, got %d", pool.execCount)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	tests := []struct {
		name      string
		existing  int
		wantSeed  int
		wantExecs int
	}{
		{"empty table is seeded", 0, 90, 90},
		{"populated table is left alone", 12, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &MockPgPool{
				QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
					if !strings.Contains(sql, "count(*)") {
						t.Errorf("unexpected query: %s", sql)
					}
					return &MockRows{data: [][]int{{tt.existing}}}, nil
				},
			}
			n, err := SeedIfEmpty(context.Background(), pool, Reference())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if n != tt.wantSeed {
				t.Errorf("seeded %d, want %d", n, tt.wantSeed)
			}
			if pool.execCount != tt.wantExecs {
				t.Errorf("got %d inserts, want %d", pool.execCount, tt.wantExecs)
			}
		})
	}
}

func TestSeedIfEmpty_CountError(t *testing.T) {
	pool := &MockPgPool{
		QueryFunc: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, errors.New(`relation "training_matches" does not exist`)
		},
	}
	if _, err := SeedIfEmpty(context.Background(), pool, Reference()); err == nil {
		t.Error("expected error")
	}
	if pool.execCount != 0 {
		t.Errorf("expected no inserts, got %d", pool.execCount)
	}
}
