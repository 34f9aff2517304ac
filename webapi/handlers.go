package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"studio_backend/agent"
	"studio_backend/brief"
	"studio_backend/core"
	"studio_backend/db"
	"studio_backend/iteration"
	"studio_backend/nukescript"
	"studio_backend/storage"
)

// Pipeline composes the generation components behind the HTTP handlers:
// variant planning and execution, iteration refinement, image persistence,
// history recording, and Nuke script export.
type Pipeline struct {
	planner  *agent.Planner
	executor *agent.Executor
	runner   *iteration.Runner
	store    *storage.Store
	history  *db.HistoryRepository
	nuke     *nukescript.Generator
	provider string
	logger   *zap.Logger
}

// ErrNilComponent is returned when a required pipeline component is missing.
var ErrNilComponent = errors.New("webapi: pipeline component is nil")

// NewPipeline wires the handler dependencies. history may be nil when
// persistence is disabled; everything else is required. provider names the
// generation backend for history rows.
func NewPipeline(
	planner *agent.Planner,
	executor *agent.Executor,
	runner *iteration.Runner,
	store *storage.Store,
	history *db.HistoryRepository,
	nuke *nukescript.Generator,
	provider string,
	logger *zap.Logger,
) (*Pipeline, error) {
	if planner == nil || executor == nil || runner == nil || store == nil || nuke == nil {
		return nil, ErrNilComponent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		planner:  planner,
		executor: executor,
		runner:   runner,
		store:    store,
		history:  history,
		nuke:     nuke,
		provider: provider,
		logger:   logger.Named("pipeline"),
	}, nil
}

type variantsRequest struct {
	BaseParams  core.DesignRequest `json:"base_params"`
	NumVariants int                `json:"num_variants"`
}

// designResult is a generation outcome plus the path the image was saved to.
type designResult struct {
	agent.GenerationOutcome
	ImagePath string `json:"image_path,omitempty"`
}

type variantsResponse struct {
	Success     bool                    `json:"success"`
	BatchID     string                  `json:"batch_id"`
	Designs     []designResult          `json:"designs"`
	Consistency agent.ConsistencyReport `json:"consistency"`
}

// handleVariants plans a variant grid from the base parameters, generates
// all variants in parallel, persists the successful images, and returns the
// batch with its consistency report.
func (p *Pipeline) handleVariants(w http.ResponseWriter, r *http.Request) {
	var req variantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.BaseParams.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "base_params.prompt is required")
		return
	}

	specs := p.planner.PlanVariants(req.BaseParams)
	if req.NumVariants > 0 && req.NumVariants < len(specs) {
		specs = specs[:req.NumVariants]
	}

	batchID := storage.NewDesignID()
	correlationID := uuid.NewString()
	outcomes := p.executor.RunBatch(r.Context(), specs, req.BaseParams)

	designs := make([]designResult, len(outcomes))
	for i, o := range outcomes {
		designs[i] = designResult{GenerationOutcome: o}
		if o.Success && len(o.ImageData) > 0 {
			filename := fmt.Sprintf("%s_%s.png", batchID, o.VariantID)
			path, err := p.store.SaveImage(o.ImageData, "generated_designs", filename)
			if err != nil {
				p.logger.Error("saving variant image failed",
					zap.String("variant_id", o.VariantID),
					zap.Error(err))
			} else {
				designs[i].ImagePath = path
			}
		}
		p.record(r.Context(), db.GenerationRecord{
			CorrelationID: correlationID,
			BatchID:       batchID,
			VariantID:     o.VariantID,
			Provider:      p.provider,
			Prompt:        agent.BuildVariantPrompt(req.BaseParams.Prompt, specs[i]),
			Status:        recordStatus(o.Success),
			Error:         o.Error,
			Width:         o.Metadata.Width,
			Height:        o.Metadata.Height,
			Duration:      o.Duration,
		})
	}

	writeJSON(w, http.StatusOK, variantsResponse{
		Success:     true,
		BatchID:     batchID,
		Designs:     designs,
		Consistency: agent.ConsistencyCheck(outcomes),
	})
}

type selectBestRequest struct {
	Designs []agent.GenerationOutcome `json:"designs"`
}

// handleSelectBest scores a previously generated batch and returns the best
// composition. An empty or all-failed batch yields a structured no-valid
// result, not an error.
func (p *Pipeline) handleSelectBest(w http.ResponseWriter, r *http.Request) {
	var req selectBestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, agent.SelectBestComposition(req.Designs))
}

type iterationsRequest struct {
	BaseParams    core.DesignRequest `json:"base_params"`
	NumIterations int                `json:"num_iterations"`
}

type iterationResult struct {
	iteration.Outcome
	ImagePath string `json:"image_path,omitempty"`
}

type iterationsResponse struct {
	Success    bool              `json:"success"`
	BatchID    string            `json:"batch_id"`
	Iterations []iterationResult `json:"iterations"`
}

// handleIterations refines the base parameters across N numbered
// perturbations, generates them in parallel, and persists the results.
func (p *Pipeline) handleIterations(w http.ResponseWriter, r *http.Request) {
	var req iterationsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.BaseParams.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "base_params.prompt is required")
		return
	}
	n := req.NumIterations
	if n <= 0 {
		n = iteration.DefaultIterations
	}

	specs := iteration.PlanIterations(req.BaseParams, n)
	batchID := storage.NewDesignID()
	correlationID := uuid.NewString()
	outcomes := p.runner.Run(r.Context(), specs)

	results := make([]iterationResult, len(outcomes))
	for i, o := range outcomes {
		results[i] = iterationResult{Outcome: o}
		if o.Success && len(o.ImageData) > 0 {
			filename := fmt.Sprintf("%s_iteration_%d.png", batchID, o.Number)
			path, err := p.store.SaveImage(o.ImageData, "refined_designs", filename)
			if err != nil {
				p.logger.Error("saving iteration image failed",
					zap.Int("iteration", o.Number),
					zap.Error(err))
			} else {
				results[i].ImagePath = path
			}
		}
		p.record(r.Context(), db.GenerationRecord{
			CorrelationID: correlationID,
			BatchID:       batchID,
			VariantID:     fmt.Sprintf("iteration_%d", o.Number),
			Provider:      p.provider,
			Prompt:        o.Params.Prompt,
			Status:        recordStatus(o.Success),
			Error:         o.Error,
			Width:         o.Metadata.Width,
			Height:        o.Metadata.Height,
		})
	}

	writeJSON(w, http.StatusOK, iterationsResponse{
		Success:    true,
		BatchID:    batchID,
		Iterations: results,
	})
}

type iterationSelectBestRequest struct {
	Iterations []iteration.Outcome `json:"iterations"`
}

// handleIterationsSelectBest ranks a refined batch with the rubric score.
func (p *Pipeline) handleIterationsSelectBest(w http.ResponseWriter, r *http.Request) {
	var req iterationSelectBestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, iteration.SelectBest(req.Iterations))
}

type exportNukeRequest struct {
	ImagePath    string             `json:"image_path"`
	DesignParams core.DesignRequest `json:"design_params"`
	ScriptName   string             `json:"script_name"`
}

type exportNukeResponse struct {
	Success    bool   `json:"success"`
	ScriptPath string `json:"script_path"`
}

// handleExportNuke renders the HDR finishing script for a saved design and
// stores it under nuke_scripts.
func (p *Pipeline) handleExportNuke(w http.ResponseWriter, r *http.Request) {
	var req exportNukeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.ImagePath == "" {
		writeError(w, http.StatusBadRequest, "image_path is required")
		return
	}

	script, err := p.nuke.DesignScript(req.ImagePath, req.DesignParams)
	if err != nil {
		p.logger.Error("nuke script generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "script generation failed")
		return
	}

	name := req.ScriptName
	if name == "" {
		name = storage.NewDesignID()
	}
	if !strings.HasSuffix(name, ".nk") {
		name += ".nk"
	}
	path, err := p.store.SaveText(script, "nuke_scripts", name)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p.logger.Error("saving nuke script failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving script failed")
		return
	}

	writeJSON(w, http.StatusOK, exportNukeResponse{Success: true, ScriptPath: path})
}

type compareRequest struct {
	ImagePaths []string `json:"image_paths"`
	OutputName string   `json:"output_name"`
}

// handleCompare renders a contact sheet script laying out a set of saved
// designs side by side and stores it under nuke_scripts.
func (p *Pipeline) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.ImagePaths) == 0 {
		writeError(w, http.StatusBadRequest, "image_paths must not be empty")
		return
	}

	name := req.OutputName
	if name == "" {
		name = storage.NewDesignID()
	}
	script, err := p.nuke.ComparisonScript(req.ImagePaths, name)
	if err != nil {
		p.logger.Error("comparison script generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "script generation failed")
		return
	}

	path, err := p.store.SaveText(script, "nuke_scripts", name+"_comparison.nk")
	if err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		p.logger.Error("saving comparison script failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "saving script failed")
		return
	}

	writeJSON(w, http.StatusOK, exportNukeResponse{Success: true, ScriptPath: path})
}

type manufacturabilityRequest struct {
	DesignParams core.DesignRequest `json:"design_params"`
}

type manufacturabilityResponse struct {
	Success  bool                          `json:"success"`
	Analysis agent.ManufacturabilityReport `json:"analysis"`
}

// handleAnalyzeManufacturability reports production feasibility for a set
// of design parameters.
func (p *Pipeline) handleAnalyzeManufacturability(w http.ResponseWriter, r *http.Request) {
	var req manufacturabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, manufacturabilityResponse{
		Success:  true,
		Analysis: agent.AnalyzeManufacturability(req.DesignParams),
	})
}

// maxBriefBytes bounds uploaded PDF briefs.
const maxBriefBytes = 20 << 20

type briefResponse struct {
	Success bool   `json:"success"`
	Prompt  string `json:"prompt"`
	Source  string `json:"source_filename,omitempty"`
}

// handleBrief extracts a generation prompt from an uploaded PDF design
// brief. The upload is staged under temp and removed after extraction.
func (p *Pipeline) handleBrief(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBriefBytes)
	file, header, err := r.FormFile("brief")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'brief' with a PDF file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload failed: "+err.Error())
		return
	}

	path, err := p.store.SaveImage(data, "temp", storage.NewDesignID()+".pdf")
	if err != nil {
		p.logger.Error("staging brief upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "staging upload failed")
		return
	}
	defer os.Remove(path)

	prompt, err := brief.PromptFromPDF(path, brief.DefaultMaxPromptLength)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not extract text from brief: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, briefResponse{
		Success: true,
		Prompt:  prompt,
		Source:  header.Filename,
	})
}

// handleImage serves a previously saved design image by filename.
func (p *Pipeline) handleImage(w http.ResponseWriter, r *http.Request) {
	path, err := p.store.OpenImage(r.PathValue("filename"))
	if err != nil {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	http.ServeFile(w, r, path)
}

// historyRecord is the wire form of a persisted generation record.
type historyRecord struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	BatchID       string    `json:"batch_id"`
	VariantID     string    `json:"variant_id"`
	Provider      string    `json:"provider"`
	Prompt        string    `json:"prompt"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	DurationMS    int64     `json:"duration_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

type historyCounts struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

type historyResponse struct {
	Success bool            `json:"success"`
	Records []historyRecord `json:"records"`
	Counts  historyCounts   `json:"counts"`
}

// handleHistory returns persisted generation records. A batch_id query
// parameter selects one batch oldest first; otherwise the most recent
// records are returned, bounded by the limit parameter.
func (p *Pipeline) handleHistory(w http.ResponseWriter, r *http.Request) {
	if p.history == nil {
		writeError(w, http.StatusServiceUnavailable, "history persistence is disabled")
		return
	}

	var (
		records []db.GenerationRecord
		err     error
	)
	if batchID := r.URL.Query().Get("batch_id"); batchID != "" {
		records, err = p.history.ListByBatch(r.Context(), batchID)
	} else {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err = strconv.Atoi(raw)
			if err != nil || limit < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
		}
		records, err = p.history.ListRecent(r.Context(), limit)
	}
	if err != nil {
		p.logger.Error("listing generation history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "listing history failed")
		return
	}

	succeeded, err := p.history.CountByStatus(r.Context(), db.StatusSuccess)
	if err != nil {
		p.logger.Error("counting generation history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "counting history failed")
		return
	}
	failed, err := p.history.CountByStatus(r.Context(), db.StatusFailed)
	if err != nil {
		p.logger.Error("counting generation history failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "counting history failed")
		return
	}

	views := make([]historyRecord, len(records))
	for i, rec := range records {
		views[i] = historyRecord{
			ID:            rec.ID,
			CorrelationID: rec.CorrelationID,
			BatchID:       rec.BatchID,
			VariantID:     rec.VariantID,
			Provider:      rec.Provider,
			Prompt:        rec.Prompt,
			Status:        rec.Status,
			Error:         rec.Error,
			Width:         rec.Width,
			Height:        rec.Height,
			DurationMS:    rec.Duration.Milliseconds(),
			CreatedAt:     rec.CreatedAt,
		}
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Success: true,
		Records: views,
		Counts:  historyCounts{Success: succeeded, Failed: failed},
	})
}

// handleHealth reports liveness without touching the provider.
func (p *Pipeline) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": p.provider,
	})
}

// record persists one history row, logging instead of failing the request.
func (p *Pipeline) record(ctx context.Context, rec db.GenerationRecord) {
	if p.history == nil {
		return
	}
	if _, err := p.history.Insert(ctx, rec); err != nil {
		p.logger.Warn("recording generation history failed",
			zap.String("batch_id", rec.BatchID),
			zap.String("variant_id", rec.VariantID),
			zap.Error(err))
	}
}

func recordStatus(success bool) string {
	if success {
		return db.StatusSuccess
	}
	return db.StatusFailed
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
