/*
Package factory provides JSON to Go layer-profile conversion.

PURPOSE:
  Converts JSON profile definitions into engine configuration plus the
  layer preparation rules. This enables threshold tuning without code
  changes - surveying offices can keep per-district profiles in JSON,
  and the factory creates the proper Go structs.

JSON SCHEMA:
  {
    "layer": "landuse",
    "name": "nutzung-nrw",
    "thresholds": {
      "shred_area": 5,
      "merge_area": 2,
      "form_index": 10,
      "delete_area": 0.5,
      "correction": 5,
      "search_tolerance": 0.2
    },
    "keep_unmerged": false,
    "workers": 4
  }

KEY FEATURES:
  - Unset thresholds fall back to the layer defaults
  - The layer binds the matching preparation rules (overlap marking
    for land use, yield parsing for soil assessment)
  - delete_area is optional; absent means no delete floor

SEE ALSO:
  - landuse/, soil/: The per-layer defaults and preparation rules
  - recon/types.go: Thresholds semantics
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/alkis/sfl-engine/landuse"
	"github.com/alkis/sfl-engine/recon"
	"github.com/alkis/sfl-engine/soil"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of a layer profile.
type ProfileJSON struct {
	Layer        string          `json:"layer"`
	Name         string          `json:"name,omitempty"`
	Thresholds   *ThresholdsJSON `json:"thresholds,omitempty"`
	KeepUnmerged bool            `json:"keep_unmerged,omitempty"`
	Workers      int             `json:"workers,omitempty"`
}

// ThresholdsJSON carries optional threshold overrides; nil fields keep
// the layer default.
type ThresholdsJSON struct {
	ShredArea       *int64   `json:"shred_area,omitempty"`
	MergeArea       *int64   `json:"merge_area,omitempty"`
	FormIndex       *float64 `json:"form_index,omitempty"`
	DeleteArea      *float64 `json:"delete_area,omitempty"`
	Correction      *int64   `json:"correction,omitempty"`
	SearchTolerance *float64 `json:"search_tolerance,omitempty"`
}

// =============================================================================
// PROFILE
// =============================================================================

// Profile is a ready-to-run binding of a layer to its engine config
// and preparation rules.
type Profile struct {
	Name   string
	Layer  string
	Config recon.Config

	// Prepare applies the layer's attribute rules to raw fragments
	// before a run.
	Prepare func([]*recon.Fragment)
}

// BuiltinProfiles returns the default profile for every known layer.
func BuiltinProfiles() []*Profile {
	return []*Profile{
		{Name: landuse.Layer, Layer: landuse.Layer, Config: landuse.DefaultConfig(), Prepare: landuse.Prepare},
		{Name: soil.Layer, Layer: soil.Layer, Config: soil.DefaultConfig(), Prepare: soil.Prepare},
	}
}

// =============================================================================
// PROFILE FACTORY
// =============================================================================

// ProfileFactory converts JSON profiles to Go structs.
type ProfileFactory struct{}

// NewProfileFactory creates a new profile factory.
func NewProfileFactory() *ProfileFactory {
	return &ProfileFactory{}
}

// ParseProfile parses a JSON string into a Profile.
func (f *ProfileFactory) ParseProfile(jsonStr string) (*Profile, error) {
	var pj ProfileJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts ProfileJSON to a Profile.
func (f *ProfileFactory) FromJSON(pj ProfileJSON) (*Profile, error) {
	var (
		thresholds recon.Thresholds
		prepare    func([]*recon.Fragment)
	)
	switch pj.Layer {
	case landuse.Layer:
		thresholds = landuse.DefaultThresholds()
		prepare = landuse.Prepare
	case soil.Layer:
		thresholds = soil.DefaultThresholds()
		prepare = soil.Prepare
	default:
		return nil, fmt.Errorf("unknown layer %q", pj.Layer)
	}

	if pj.Thresholds != nil {
		applyOverrides(&thresholds, *pj.Thresholds)
	}

	name := pj.Name
	if name == "" {
		name = pj.Layer
	}

	return &Profile{
		Name:  name,
		Layer: pj.Layer,
		Config: recon.Config{
			Thresholds:   thresholds,
			KeepUnmerged: pj.KeepUnmerged,
			Workers:      pj.Workers,
		},
		Prepare: prepare,
	}, nil
}

func applyOverrides(t *recon.Thresholds, o ThresholdsJSON) {
	if o.ShredArea != nil {
		t.ShredArea = *o.ShredArea
	}
	if o.MergeArea != nil {
		t.MergeArea = *o.MergeArea
	}
	if o.FormIndex != nil {
		t.FormIndex = *o.FormIndex
	}
	if o.DeleteArea != nil {
		t.DeleteArea = o.DeleteArea
	}
	if o.Correction != nil {
		t.Correction = *o.Correction
	}
	if o.SearchTolerance != nil {
		t.SearchTolerance = *o.SearchTolerance
	}
}
