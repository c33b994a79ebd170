package worker

import (
	"fmt"
	"time"
)

// TelemetryQuery describes an aggregate over the prediction log.
type TelemetryQuery struct {
	Dimension    string    `json:"dimension"` // group by: model, outcome, source, run, day
	Metric       string    `json:"metric"`    // count, avg_confidence, fallback_share, red_card_share
	FilterModel  string    `json:"filter_model"`
	FilterSource string    `json:"filter_source"`
	FilterRunID  string    `json:"filter_run_id"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Limit        int       `json:"limit"`
}

// allowedDimensions maps API values to SQL columns
var allowedDimensions = map[string]string{
	"model":   "model_name",
	"outcome": "outcome",
	"source":  "source",
	"run":     "run_id",
	"day":     "toString(toDate(timestamp))",
}

var allowedMetrics = map[string]string{
	"count":          "toFloat64(count())",
	"avg_confidence": "avg(confidence)",
	"fallback_share": "countIf(source = 'fallback') / count()",
	"red_card_share": "countIf(home_red_cards > 0 OR away_red_cards > 0) / count()",
}

// BuildTelemetryQuery constructs a parameterised ClickHouse query. Only
// whitelisted dimensions and metrics reach the SQL text; filter values
// are passed as arguments.
func BuildTelemetryQuery(req TelemetryQuery) (string, []interface{}, error) {
	groupByCol, ok := allowedDimensions[req.Dimension]
	if !ok && req.Dimension != "" {
		return "", nil, fmt.Errorf("invalid dimension: %s", req.Dimension)
	}

	metric := req.Metric
	if metric == "" {
		metric = "count"
	}
	selectClause, ok := allowedMetrics[metric]
	if !ok {
		return "", nil, fmt.Errorf("invalid metric: %s", req.Metric)
	}

	query := fmt.Sprintf("SELECT %s AS value", selectClause)
	var args []interface{}

	if groupByCol != "" {
		query += fmt.Sprintf(", %s AS label", groupByCol)
	} else {
		query += ", 'all' AS label"
	}

	query += " FROM match_predictor.predictions_log WHERE 1=1"

	if req.FilterModel != "" {
		query += " AND model_name = ?"
		args = append(args, req.FilterModel)
	}
	if req.FilterSource != "" {
		query += " AND source = ?"
		args = append(args, req.FilterSource)
	}
	if req.FilterRunID != "" {
		query += " AND run_id = ?"
		args = append(args, req.FilterRunID)
	}
	if !req.StartDate.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, req.StartDate)
	}
	if !req.EndDate.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, req.EndDate)
	}

	if groupByCol != "" {
		query += fmt.Sprintf(" GROUP BY %s", groupByCol)
	}

	query += " ORDER BY value DESC"

	limit := req.Limit
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	return query, args, nil
}
