// Command prediction_log summarises the prediction telemetry table. It runs
// one aggregate (see worker.TelemetryQuery) and can render it as an SVG
// bar chart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"github.com/vartificial/match-predictor/internal/worker"
)

type bar struct {
	label string
	value float64
}

func main() {
	dsn := flag.String("dsn", os.Getenv("CLICKHOUSE_URL"), "ClickHouse DSN")
	out := flag.String("out", "", "directory for SVG charts (none when empty)")
	var q worker.TelemetryQuery
	flag.StringVar(&q.Dimension, "dimension", "model", "group by: model, outcome, source, run, day")
	flag.StringVar(&q.Metric, "metric", "count", "count, avg_confidence, fallback_share, red_card_share")
	flag.StringVar(&q.FilterModel, "model", "", "only this model")
	flag.StringVar(&q.FilterSource, "source", "", "only this source (ensemble or fallback)")
	flag.StringVar(&q.FilterRunID, "run", "", "only this training run")
	since := flag.Duration("since", 0, "only predictions newer than this")
	flag.IntVar(&q.Limit, "limit", 20, "maximum rows")
	flag.Parse()

	if *since > 0 {
		q.StartDate = time.Now().Add(-*since)
	}

	if *dsn == "" {
		log.Fatal("a ClickHouse DSN is required (-dsn or CLICKHOUSE_URL)")
	}
	opts, err := clickhouse.ParseDSN(*dsn)
	if err != nil {
		log.Fatalf("Invalid DSN: %v", err)
	}

	ctx := context.Background()
	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping ClickHouse: %v", err)
	}

	var total, fallback uint64
	err = conn.QueryRow(ctx, `
		SELECT count(), countIf(source = 'fallback')
		FROM match_predictor.predictions_log
	`).Scan(&total, &fallback)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Logged predictions: %d (%d from fallback)\n", total, fallback)

	bars, err := aggregate(ctx, conn, q)
	if err != nil {
		log.Fatal(err)
	}
	if len(bars) == 0 {
		fmt.Println("No predictions logged yet.")
		return
	}
	for _, b := range bars {
		fmt.Printf("- %s: %.3f\n", b.label, b.value)
	}

	if *out != "" {
		title := fmt.Sprintf("%s by %s", q.Metric, q.Dimension)
		svg := barChartSVG(title, bars, "#4a90e2")
		if err := saveChart(*out, fmt.Sprintf("%s_by_%s.svg", q.Metric, q.Dimension), svg); err != nil {
			log.Fatal(err)
		}
	}
}

func aggregate(ctx context.Context, conn clickhouse.Conn, q worker.TelemetryQuery) ([]bar, error) {
	query, args, err := worker.BuildTelemetryQuery(q)
	if err != nil {
		return nil, err
	}
	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []bar
	for rows.Next() {
		var b bar
		if err := rows.Scan(&b.value, &b.label); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

func saveChart(dir, filename, svg string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("Chart generated: %s\n", path)
	return nil
}

func barChartSVG(title string, bars []bar, color string) string {
	width := 80*len(bars) + 100
	height := 400
	padding := 50
	barWidth := (width - 2*padding) / len(bars)
	maxBarHeight := height - 2*padding - 60

	var maxVal float64
	for _, b := range bars {
		maxVal = max(maxVal, b.value)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#1a1a1a" />`)
	fmt.Fprintf(&sb, `<text x="%d" y="30" fill="white" font-family="Arial" font-size="20" text-anchor="middle">%s</text>`, width/2, title)

	base := height - padding - 60
	for i, b := range bars {
		barHeight := 0
		if maxVal > 0 {
			barHeight = int(b.value * float64(maxBarHeight) / maxVal)
		}
		x := padding + i*barWidth
		y := base - barHeight

		fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s" rx="4" />`, x+5, y, barWidth-10, barHeight, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="11" text-anchor="end" transform="rotate(-45 %d %d)">%s</text>`,
			x+barWidth/2, base+15, x+barWidth/2, base+15, b.label)
		fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="white" font-family="Arial" font-size="10" text-anchor="middle">%.3g</text>`, x+barWidth/2, y-5, b.value)
	}
	fmt.Fprintf(&sb, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="white" stroke-width="2" />`, padding, base, width-padding, base)

	sb.WriteString(`</svg>`)
	return sb.String()
}
