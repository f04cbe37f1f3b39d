package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "isxcli/internal/errors"
	"isxcli/internal/config"
	"isxcli/pkg/contracts/domain"
)

// ReportHandler serves the valuation engine's persisted run artifacts
// read-only: run manifests, and the enriched hitters/pitchers/position
// summary JSON the engine writes alongside its CSV output. It never
// triggers a run or mutates anything on disk.
type ReportHandler struct {
	paths        *config.Paths
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new read-only report handler rooted at
// paths.OutputDir.
func NewReportHandler(paths *config.Paths, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		paths:        paths,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the reporting routes, all GET and all read-only.
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{runID}", h.GetRun)
	r.Get("/hitters", h.GetHitters)
	r.Get("/pitchers", h.GetPitchers)
	r.Get("/position-summary", h.GetPositionSummary)

	return r
}

// ListRuns handles GET /api/runs: every persisted run manifest under
// OutputDir, sorted by run id in descending order.
func (h *ReportHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(h.paths.OutputDir)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("list runs", err))
		return
	}

	var manifests []domain.RunManifest
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "run_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		manifest, err := readManifest(filepath.Join(h.paths.OutputDir, name))
		if err != nil {
			h.logger.WarnContext(r.Context(), "skipping unreadable run manifest",
				slog.String("file", name), slog.String("error", err.Error()))
			continue
		}
		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(i, j int) bool { return manifests[i].RunID > manifests[j].RunID })
	render.JSON(w, r, manifests)
}

// GetRun handles GET /api/runs/{runID}.
func (h *ReportHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	manifest, err := readManifest(filepath.Join(h.paths.OutputDir, "run_"+runID+".json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError("run "+runID))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("read run manifest", err))
		return
	}
	render.JSON(w, r, manifest)
}

// GetHitters handles GET /api/hitters, passing through the most recent
// hitters.json verbatim (its stats.valuations sub-record carries the
// computed Z vectors, dollar breakdown, and tier).
func (h *ReportHandler) GetHitters(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, "hitters.json")
}

// GetPitchers handles GET /api/pitchers.
func (h *ReportHandler) GetPitchers(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, "pitchers.json")
}

// GetPositionSummary handles GET /api/position-summary.
func (h *ReportHandler) GetPositionSummary(w http.ResponseWriter, r *http.Request) {
	h.serveArtifact(w, r, "position_summary.json")
}

func (h *ReportHandler) serveArtifact(w http.ResponseWriter, r *http.Request, filename string) {
	data, err := os.ReadFile(filepath.Join(h.paths.OutputDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			h.errorHandler.HandleError(w, r, apierrors.NotFoundError(filename+" (no run has completed yet)"))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.FileSystemError("read "+filename, err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func readManifest(path string) (domain.RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.RunManifest{}, err
	}
	var manifest domain.RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return domain.RunManifest{}, err
	}
	return manifest, nil
}
