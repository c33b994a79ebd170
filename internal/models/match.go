package models

import "fmt"

// Outcome is a match result from the home team's perspective.
// The integer codes double as class indices in every probability vector.
type Outcome int

const (
	HomeWin Outcome = iota
	Draw
	AwayWin
)

// NumOutcomes is the number of outcome classes.
const NumOutcomes = 3

// Outcomes lists every outcome in class-index order.
var Outcomes = [NumOutcomes]Outcome{HomeWin, Draw, AwayWin}

func (o Outcome) String() string {
	switch o {
	case HomeWin:
		return "Home Win"
	case Draw:
		return "Draw"
	case AwayWin:
		return "Away Win"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Valid reports whether o is one of the three known outcomes.
func (o Outcome) Valid() bool {
	return o >= HomeWin && o <= AwayWin
}

func (o Outcome) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("invalid outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(text []byte) error {
	parsed, err := ParseOutcome(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseOutcome accepts the display name ("Home Win") or the short code ("H", "D", "A").
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "Home Win", "H":
		return HomeWin, nil
	case "Draw", "D":
		return Draw, nil
	case "Away Win", "A":
		return AwayWin, nil
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// DeriveOutcome compares goals: strictly greater is a home win, strictly less an away win.
func DeriveOutcome(homeGoals, awayGoals int) Outcome {
	switch {
	case homeGoals > awayGoals:
		return HomeWin
	case homeGoals < awayGoals:
		return AwayWin
	default:
		return Draw
	}
}

// RawMatchStats holds the eight raw statistics of a match.
// Shots on target should not exceed shots, but nothing enforces it.
type RawMatchStats struct {
	HomeGoals         int `json:"home_goals"`
	AwayGoals         int `json:"away_goals"`
	HomeShots         int `json:"home_shots"`
	AwayShots         int `json:"away_shots"`
	HomeShotsOnTarget int `json:"home_shots_on_target"`
	AwayShotsOnTarget int `json:"away_shots_on_target"`
	HomeRedCards      int `json:"home_red_cards"`
	AwayRedCards      int `json:"away_red_cards"`
}

// Outcome derives the result from the goal counts.
func (s RawMatchStats) Outcome() Outcome {
	return DeriveOutcome(s.HomeGoals, s.AwayGoals)
}

// TrainingExample is a labelled match.
type TrainingExample struct {
	Stats   RawMatchStats
	Outcome Outcome
}

// NewTrainingExample labels stats with the outcome implied by the score.
func NewTrainingExample(stats RawMatchStats) TrainingExample {
	return TrainingExample{Stats: stats, Outcome: stats.Outcome()}
}
