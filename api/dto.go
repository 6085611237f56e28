/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

GEOMETRY:
  Geometry crosses the API as WKT strings. The handler decodes them
  with the configured provider; geometric area is computed server-side
  and never trusted from the client.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/profile.go: ProfileJSON type
*/
package api

import (
	"github.com/alkis/sfl-engine/factory"
	"github.com/alkis/sfl-engine/recon"
	"github.com/alkis/sfl-engine/report"
	"github.com/alkis/sfl-engine/store"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SubmitRunRequest is the request body for POST /api/runs.
type SubmitRunRequest struct {
	// Layer selects the built-in profile when Profile is absent.
	Layer string `json:"layer"`

	// Profile optionally overrides the layer defaults.
	Profile *factory.ProfileJSON `json:"profile,omitempty"`

	Parcels   []ParcelDTO        `json:"parcels"`
	Fragments []InputFragmentDTO `json:"fragments"`
}

// ParcelDTO is one cadastral parcel in a run submission.
type ParcelDTO struct {
	Key          string  `json:"key"`
	OfficialArea int64   `json:"official_area"`
	GeomArea     float64 `json:"geom_area"`
}

// InputFragmentDTO is one overlay fragment in a run submission.
type InputFragmentDTO struct {
	ID     int64             `json:"id"`
	Parent string            `json:"parent_key"`
	WKT    string            `json:"wkt"`
	Attrs  map[string]string `json:"attrs,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// RunDTO is one stored run header.
type RunDTO struct {
	ID        string         `json:"id"`
	Layer     string         `json:"layer"`
	Profile   string         `json:"profile"`
	CreatedAt string         `json:"created_at"`
	Summary   report.Summary `json:"summary"`
}

// RunResponse is the full view of one run.
type RunResponse struct {
	Run       RunDTO                 `json:"run"`
	Fragments []store.FragmentRecord `json:"fragments"`
	Deleted   []recon.FragmentID     `json:"deleted_ids"`
	Anomalies []AnomalyDTO           `json:"anomalies"`
}

// AnomalyDTO is one anomaly report entry.
type AnomalyDTO struct {
	Parent string `json:"parent_key"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// ProfileDTO describes one built-in layer profile.
type ProfileDTO struct {
	Layer      string        `json:"layer"`
	Name       string        `json:"name"`
	Thresholds ThresholdsDTO `json:"thresholds"`
}

// ThresholdsDTO mirrors recon.Thresholds with JSON field names.
type ThresholdsDTO struct {
	ShredArea       int64    `json:"shred_area"`
	MergeArea       int64    `json:"merge_area"`
	FormIndex       float64  `json:"form_index"`
	DeleteArea      *float64 `json:"delete_area,omitempty"`
	Correction      int64    `json:"correction"`
	SearchTolerance float64  `json:"search_tolerance"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
