package models

import "fmt"

// PredictRequest is the body of a predict call. Pointer fields let the
// validator tell a missing field from an explicit zero.
type PredictRequest struct {
	HomeGoals         *int `json:"home_goals" validate:"required,min=0"`
	HomeShots         *int `json:"home_shots" validate:"required,min=0"`
	HomeShotsOnTarget *int `json:"home_shots_on_target" validate:"required,min=0"`
	HomeRedCards      *int `json:"home_red_cards" validate:"required,min=0"`
	AwayGoals         *int `json:"away_goals" validate:"required,min=0"`
	AwayShots         *int `json:"away_shots" validate:"required,min=0"`
	AwayShotsOnTarget *int `json:"away_shots_on_target" validate:"required,min=0"`
	AwayRedCards      *int `json:"away_red_cards" validate:"required,min=0"`
}

// Stats converts a validated request. Nil fields read as zero.
func (r PredictRequest) Stats() RawMatchStats {
	deref := func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	}
	return RawMatchStats{
		HomeGoals:         deref(r.HomeGoals),
		AwayGoals:         deref(r.AwayGoals),
		HomeShots:         deref(r.HomeShots),
		AwayShots:         deref(r.AwayShots),
		HomeShotsOnTarget: deref(r.HomeShotsOnTarget),
		AwayShotsOnTarget: deref(r.AwayShotsOnTarget),
		HomeRedCards:      deref(r.HomeRedCards),
		AwayRedCards:      deref(r.AwayRedCards),
	}
}

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Missing bool
	Reason  string
}

func (e *ValidationError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Missing field: %s", e.Field)
	}
	if e.Reason != "" {
		return fmt.Sprintf("Invalid field: %s (%s)", e.Field, e.Reason)
	}
	return fmt.Sprintf("Invalid field: %s", e.Field)
}
