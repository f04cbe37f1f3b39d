package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths is the single source of truth for the engine's file system layout,
// resolved relative to the executable directory so the binary behaves the
// same in a dev checkout and an installed location.
type Paths struct {
	ExecutableDir    string
	InputDir         string
	OutputDir        string
	LogsDir          string
	BudgetConfigFile string

	// Legacy fields/paths kept for internal/dataprocessing and internal/files,
	// which still resolve report/report-asset locations against these names.
	DataDir      string
	DownloadsDir string
	ReportsDir   string
	CacheDir     string
	WebDir       string
	StaticDir    string

	IndexCSV          string
	TickerSummaryJSON string
	TickerSummaryCSV  string
	CombinedDataCSV   string
}

// GetPaths resolves cfg's configured directories against the executable's
// directory, leaving any already-absolute path untouched.
func GetPaths(cfg PathsConfig) (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	exeDir := filepath.Dir(exe)

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(exeDir, p)
	}

	dataDir := resolve(cfg.OutputDir)
	downloadsDir := filepath.Join(dataDir, "downloads")
	reportsDir := filepath.Join(dataDir, "reports")
	cacheDir := filepath.Join(dataDir, "cache")
	webDir := filepath.Join(exeDir, "web")
	staticDir := filepath.Join(webDir, "static")

	return &Paths{
		ExecutableDir:    exeDir,
		InputDir:         resolve(cfg.InputDir),
		OutputDir:        resolve(cfg.OutputDir),
		LogsDir:          resolve(cfg.LogsDir),
		BudgetConfigFile: resolve(cfg.BudgetConfig),

		DataDir:      dataDir,
		DownloadsDir: downloadsDir,
		ReportsDir:   reportsDir,
		CacheDir:     cacheDir,
		WebDir:       webDir,
		StaticDir:    staticDir,

		IndexCSV:          filepath.Join(reportsDir, "indexes.csv"),
		TickerSummaryJSON: filepath.Join(reportsDir, "ticker_summary.json"),
		TickerSummaryCSV:  filepath.Join(reportsDir, "ticker_summary.csv"),
		CombinedDataCSV:   filepath.Join(reportsDir, "isx_combined_data.csv"),
	}, nil
}

// EnsureDirectories creates the engine's input, output, and log directories
// if they don't already exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.InputDir, p.OutputDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetDownloadPath returns the path for a downloaded file (legacy, used by
// internal/files).
func (p *Paths) GetDownloadPath(filename string) string {
	return filepath.Join(p.DownloadsDir, filename)
}

// GetReportPath returns the path for a report file (legacy, used by
// internal/dataprocessing and internal/files).
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetCachePath returns the path for a cache file (legacy, used by
// internal/files).
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetLogPath returns the path for a log file (legacy, used by internal/files).
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetWebFilePath returns the path to a web file (legacy, used by
// internal/files).
func (p *Paths) GetWebFilePath(filename string) string {
	return filepath.Join(p.WebDir, filename)
}

// GetStaticFilePath returns the path to a static file (legacy, used by
// internal/files).
func (p *Paths) GetStaticFilePath(filename string) string {
	return filepath.Join(p.StaticDir, filename)
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
