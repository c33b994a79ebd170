package handlers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/vartificial/match-predictor/internal/corpus"
)

// InstallDatabase installs the corpus and telemetry schemas
// @Summary Install Database Schema
// @Description Executes SQL migrations for PostgreSQL (training corpus) and ClickHouse (prediction log). An empty corpus table is seeded with the reference matches.
// @Tags System
// @Accept json
// @Produce json
// @Security AdminToken
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	hasError := false

	// 1. PostgreSQL Installation
	if h.pg == nil {
		results["postgres"] = "skipped: not configured"
	} else if err := h.executePostgresSQL(ctx, filepath.Join(h.migrations, "postgres", "001_initial_schema.sql")); err != nil {
		results["postgres"] = "failed: " + err.Error()
		hasError = true
	} else if seeded, err := corpus.SeedIfEmpty(ctx, h.pg, corpus.Reference()); err != nil {
		h.logger.Errorw("failed to seed training corpus", "error", err)
		results["postgres"] = "failed: " + err.Error()
		hasError = true
	} else {
		results["postgres"] = "success"
		if seeded > 0 {
			h.logger.Infow("seeded training corpus", "rows", seeded)
			results["postgres"] = fmt.Sprintf("success: seeded %d reference matches", seeded)
		}
	}

	// 2. ClickHouse Installation
	if h.ch == nil {
		results["clickhouse"] = "skipped: not configured"
	} else if err := h.executeClickHouseSQL(ctx, filepath.Join(h.migrations, "clickhouse", "001_initial_schema.sql")); err != nil {
		results["clickhouse"] = "failed: " + err.Error()
		hasError = true
	} else {
		results["clickhouse"] = "success"
	}

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}

// executePostgresSQL reads a SQL file and executes it on Postgres
func (h *Handler) executePostgresSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "PostgreSQL", "path", path, "error", err)
		return err
	}

	if _, err := h.pg.Exec(ctx, string(content)); err != nil {
		h.logger.Errorw("failed to execute schema", "db", "PostgreSQL", "error", err)
		return err
	}

	h.logger.Infow("successfully installed schema", "db", "PostgreSQL")
	return nil
}

// executeClickHouseSQL reads a SQL file and executes it on ClickHouse
func (h *Handler) executeClickHouseSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "ClickHouse", "path", path, "error", err)
		return err
	}

	// ClickHouse executes one statement per call
	for i, stmt := range splitStatements(string(content)) {
		if err := h.ch.Exec(ctx, stmt); err != nil {
			h.logger.Warnw("statement execution failed", "db", "ClickHouse", "error", err, "statement", stmt[:min(len(stmt), 50)]+"...")
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	h.logger.Infow("successfully installed schema", "db", "ClickHouse")
	return nil
}

func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		if trimmed := strings.TrimSpace(stmt); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
