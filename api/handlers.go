/*
handlers.go - HTTP handler implementations

PURPOSE:
  Implements the HTTP surface over the reconciliation engine and the
  run store: submit a run, list runs, fetch a run with its fragments
  and anomaly report, list the built-in layer profiles.

SUBMIT FLOW:
  1. Resolve the profile (built-in by layer, or JSON override)
  2. Decode fragment WKT with the configured geometry provider;
     geometric area is computed server-side
  3. Layer preparation (overlap marking / yield parsing)
  4. Engine run
  5. Summarize, persist write-once under a fresh run id
  6. Respond with the full run view

ERROR MAPPING:
  400  malformed body, unknown layer, bad WKT
  404  unknown run id
  500  store or engine failure

SEE ALSO:
  - server.go: Route definitions
  - store/store.go: Persistence interface
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/alkis/sfl-engine/factory"
	"github.com/alkis/sfl-engine/geom"
	"github.com/alkis/sfl-engine/recon"
	"github.com/alkis/sfl-engine/report"
	"github.com/alkis/sfl-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   store.RunStore
	Geom    geom.ProviderCodec
	Factory *factory.ProfileFactory
}

// NewHandler creates a new handler with the given store and geometry
// backend.
func NewHandler(st store.RunStore, g geom.ProviderCodec) *Handler {
	return &Handler{
		Store:   st,
		Geom:    g,
		Factory: factory.NewProfileFactory(),
	}
}

// =============================================================================
// RUN HANDLERS
// =============================================================================

// SubmitRun executes and persists one reconciliation run.
func (h *Handler) SubmitRun(w http.ResponseWriter, r *http.Request) {
	var req SubmitRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	profile, err := h.resolveProfile(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid profile", err)
		return
	}

	input, err := h.buildInput(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid run input", err)
		return
	}
	profile.Prepare(input.Fragments)

	engine := recon.NewEngine(h.Geom, profile.Config)
	result, err := engine.Run(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Run rejected", err)
		return
	}

	run := store.Run{
		ID:        uuid.NewString(),
		Layer:     profile.Layer,
		Profile:   profile.Name,
		CreatedAt: time.Now().UTC(),
		Summary:   report.Summarize(input.Parcels, result),
	}
	fragments, err := h.encodeFragments(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode result geometry", err)
		return
	}
	if err := h.Store.SaveRun(r.Context(), run, fragments, result.DeletedIDs, result.Anomalies); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist run", err)
		return
	}

	writeJSON(w, http.StatusCreated, RunResponse{
		Run:       toRunDTO(run),
		Fragments: fragments,
		Deleted:   result.DeletedIDs,
		Anomalies: toAnomalyDTOs(result.Anomalies),
	})
}

// ListRuns returns stored run headers, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": dtos})
}

// GetRun returns the full view of one stored run.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := h.Store.GetRun(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get run", err)
		return
	}
	fragments, err := h.Store.RunFragments(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get run fragments", err)
		return
	}
	deleted, err := h.Store.RunDeleted(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get deleted ids", err)
		return
	}
	anomalies, err := h.Store.RunAnomalies(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get anomalies", err)
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Run:       toRunDTO(*run),
		Fragments: fragments,
		Deleted:   deleted,
		Anomalies: toAnomalyDTOs(anomalies),
	})
}

// GetRunAnomalies returns a run's anomaly report.
func (h *Handler) GetRunAnomalies(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	anomalies, err := h.Store.RunAnomalies(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to get anomalies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"anomalies": toAnomalyDTOs(anomalies)})
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// ListProfiles returns the built-in layer profiles.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := factory.BuiltinProfiles()
	dtos := make([]ProfileDTO, len(profiles))
	for i, p := range profiles {
		t := p.Config.Thresholds
		dtos[i] = ProfileDTO{
			Layer: p.Layer,
			Name:  p.Name,
			Thresholds: ThresholdsDTO{
				ShredArea:       t.ShredArea,
				MergeArea:       t.MergeArea,
				FormIndex:       t.FormIndex,
				DeleteArea:      t.DeleteArea,
				Correction:      t.Correction,
				SearchTolerance: t.SearchTolerance,
			},
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": dtos})
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) resolveProfile(req SubmitRunRequest) (*factory.Profile, error) {
	if req.Profile != nil {
		pj := *req.Profile
		if pj.Layer == "" {
			pj.Layer = req.Layer
		}
		return h.Factory.FromJSON(pj)
	}
	return h.Factory.FromJSON(factory.ProfileJSON{Layer: req.Layer})
}

func (h *Handler) buildInput(req SubmitRunRequest) (recon.RunInput, error) {
	var in recon.RunInput
	for _, p := range req.Parcels {
		in.Parcels = append(in.Parcels, recon.Parcel{
			Key:          recon.ParentKey(p.Key),
			OfficialArea: p.OfficialArea,
			GeomArea:     p.GeomArea,
		})
	}
	for _, f := range req.Fragments {
		g, err := h.Geom.DecodeWKT(f.WKT)
		if err != nil {
			return recon.RunInput{}, fmt.Errorf("fragment %d: %w", f.ID, err)
		}
		area, err := h.Geom.Area(g)
		if err != nil {
			return recon.RunInput{}, fmt.Errorf("fragment %d: %w", f.ID, err)
		}
		in.Fragments = append(in.Fragments, &recon.Fragment{
			ID:       recon.FragmentID(f.ID),
			Parent:   recon.ParentKey(f.Parent),
			Geom:     g,
			GeomArea: area,
			Attrs:    f.Attrs,
		})
	}
	return in, nil
}

func (h *Handler) encodeFragments(result *recon.RunResult) ([]store.FragmentRecord, error) {
	records := make([]store.FragmentRecord, 0, len(result.Fragments))
	for _, f := range result.Fragments {
		wkt, err := h.Geom.EncodeWKT(f.Geom)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", f.ID, err)
		}
		records = append(records, store.FragmentRecord{
			ID:          f.ID,
			Parent:      f.Parent,
			WKT:         wkt,
			GeomArea:    f.GeomArea,
			SFL:         f.SFL,
			IsOverlap:   f.IsOverlap,
			YieldNumber: f.YieldNumber,
			EMZ:         f.EMZ,
			Disposition: result.Dispositions[f.ID],
		})
	}
	return records, nil
}

func toRunDTO(run store.Run) RunDTO {
	return RunDTO{
		ID:        run.ID,
		Layer:     run.Layer,
		Profile:   run.Profile,
		CreatedAt: run.CreatedAt.Format(time.RFC3339),
		Summary:   run.Summary,
	}
}

func toAnomalyDTOs(anomalies []recon.Anomaly) []AnomalyDTO {
	dtos := make([]AnomalyDTO, len(anomalies))
	for i, a := range anomalies {
		dtos[i] = AnomalyDTO{Parent: string(a.Parent), Kind: string(a.Kind), Detail: a.Detail}
	}
	return dtos
}

func writeStoreError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "Run not found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
