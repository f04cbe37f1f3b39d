// Command trp-engine runs one full True Replacement Price valuation pass:
// load hitter/pitcher projections and league settings, run the valuation
// kernel's stages A through H, and write the run's artifacts to the
// configured output directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"isxcli/internal/config"
	"isxcli/internal/exporter"
	"isxcli/internal/infrastructure"
	"isxcli/internal/ingest"
	"isxcli/internal/valuation"
	"isxcli/pkg/contracts/domain"
)

func main() {
	hittersFile := flag.String("hitters", "", "path to batters_matched.json (defaults to <input_dir>/batters_matched.json)")
	pitchersFile := flag.String("pitchers", "", "path to pitchers_matched.json (defaults to <input_dir>/pitchers_matched.json)")
	leagueFile := flag.String("league", "", "path to league_<id>_summary.json (defaults to <input_dir>/league_summary.json)")
	budgetFile := flag.String("budget", "", "path to the budget config YAML (defaults to config.Paths.BudgetConfigFile)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize structured logger, falling back to default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		logger.Error("failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.TraceExporter = cfg.OTel.TraceExporter
	otelCfg.MetricExporter = cfg.OTel.MetricExporter
	otelCfg.SampleRatio = cfg.OTel.SampleRatio
	otelProviders, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		logger.Warn("failed to initialize OpenTelemetry, continuing without tracing/metrics", slog.String("error", err.Error()))
	}
	var metrics *infrastructure.BusinessMetrics
	if otelProviders != nil {
		defer otelProviders.Shutdown(context.Background())
		metrics, err = infrastructure.CreateBusinessMetrics(otelProviders.Meter)
		if err != nil {
			logger.Warn("failed to create business metrics", slog.String("error", err.Error()))
		}
	}

	if *hittersFile == "" {
		*hittersFile = filepath.Join(paths.InputDir, "batters_matched.json")
	}
	if *pitchersFile == "" {
		*pitchersFile = filepath.Join(paths.InputDir, "pitchers_matched.json")
	}
	if *leagueFile == "" {
		*leagueFile = filepath.Join(paths.InputDir, "league_summary.json")
	}
	if *budgetFile == "" {
		*budgetFile = paths.BudgetConfigFile
	}

	runID := uuid.New().String()
	ctx := infrastructure.WithTraceID(context.Background(), runID)
	logger = logger.With(slog.String("run_id", runID))
	logger.Info("starting valuation run",
		slog.String("hitters_file", *hittersFile),
		slog.String("pitchers_file", *pitchersFile),
		slog.String("league_file", *leagueFile),
		slog.String("budget_file", *budgetFile))

	start := time.Now()
	result, warnings, err := runValuation(ctx, logger, *hittersFile, *pitchersFile, *leagueFile, *budgetFile)
	duration := time.Since(start)
	if metrics != nil {
		infrastructure.RecordRunMetrics(ctx, metrics, runID, duration, err == nil, err)
	}
	if err != nil {
		logger.Error("valuation run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn("valuation run warning", slog.String("warning", w))
	}

	valuationExporter := exporter.NewValuationExporter(paths)
	if err := valuationExporter.ExportValuations(result.Valuations, "valuations.csv"); err != nil {
		logger.Error("failed to write valuations.csv", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := valuationExporter.ExportPositionSummaries(result.Summaries, "position_summary.csv"); err != nil {
		logger.Error("failed to write position_summary.csv", slog.String("error", err.Error()))
		os.Exit(1)
	}

	workbookExporter := exporter.NewWorkbookExporter(paths)
	if err := workbookExporter.ExportWorkbook(result.Valuations, result.Summaries, "auction_board.xlsx"); err != nil {
		logger.Error("failed to write auction_board.xlsx", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hittersOut := filepath.Join(paths.OutputDir, "hitters.json")
	pitchersOut := filepath.Join(paths.OutputDir, "pitchers.json")
	if err := exporter.ExportEnrichedJSON(*hittersFile, hittersOut, result.Valuations); err != nil {
		logger.Error("failed to write hitters.json", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := exporter.ExportEnrichedJSON(*pitchersFile, pitchersOut, result.Valuations); err != nil {
		logger.Error("failed to write pitchers.json", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Plain JSON mirrors of the CSV artifacts, so cmd/trp-report can serve
	// structured results without re-parsing CSV.
	summaryJSONOut := filepath.Join(paths.OutputDir, "position_summary.json")
	if err := writeJSON(summaryJSONOut, result.Summaries); err != nil {
		logger.Error("failed to write position_summary.json", slog.String("error", err.Error()))
		os.Exit(1)
	}

	manifestPath := filepath.Join(paths.OutputDir, fmt.Sprintf("run_%s.json", runID))
	manifest := domain.RunManifest{
		RunID:    runID,
		Warnings: warnings,
		Artifacts: map[string]string{
			"valuations":            filepath.Join(paths.OutputDir, "valuations.csv"),
			"position_summary":      filepath.Join(paths.OutputDir, "position_summary.csv"),
			"position_summary_json": summaryJSONOut,
			"hitters":               hittersOut,
			"pitchers":              pitchersOut,
			"workbook":              filepath.Join(paths.OutputDir, "auction_board.xlsx"),
		},
	}
	if err := writeJSON(manifestPath, manifest); err != nil {
		logger.Error("failed to write run manifest", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("valuation run complete",
		slog.Duration("duration", duration),
		slog.Int("players_valued", len(result.Valuations)),
		slog.Int("pools", len(result.Summaries)),
		slog.String("manifest", manifestPath))
}

func runValuation(ctx context.Context, logger *slog.Logger, hittersFile, pitchersFile, leagueFile, budgetFile string) (*valuation.Result, []string, error) {
	hitterRecords, err := ingest.LoadHitters(hittersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading hitter projections: %w", err)
	}
	pitcherRecords, err := ingest.LoadPitchers(pitchersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading pitcher projections: %w", err)
	}
	league, err := ingest.LoadLeagueSummary(leagueFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading league summary: %w", err)
	}
	budgetCfg, err := ingest.LoadBudgetConfig(budgetFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading budget config: %w", err)
	}

	logger.Info("loaded run inputs",
		slog.Int("hitters", len(hitterRecords)),
		slog.Int("pitchers", len(pitcherRecords)),
		slog.Int("teams", league.Teams))

	engine := valuation.NewEngine()
	result, err := engine.Run(ctx, hitterRecords, pitcherRecords, league, budgetCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("running valuation engine: %w", err)
	}
	return result, result.Warnings, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
