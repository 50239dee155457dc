// Package viewstate defines the URL-restorable projection of application
// state and the reducer that strips every field a decoder would rebuild from
// defaults alone.
//
// A ViewState is a flat map whose values come from a closed set of shapes:
// nil, bool, string, float64, []any and map[string]any. These are exactly the
// values the JSON decoder produces, so a state that has been through
// urlcodec.Encode and urlcodec.Decode compares equal to the original.
package viewstate

import (
	"encoding/json"
	"sort"

	"github.com/abhisheknishant138/scope/internal/errors"
	"github.com/abhisheknishant138/scope/pkg/urlcodec"
)

// ViewState maps restorable field names to values.
type ViewState map[string]any

// DefaultsTable maps restorable field names to their initial value. A field
// missing from the table has no default and is never dropped by Reduce.
type DefaultsTable map[string]any

// Restorable field names.
const (
	FieldContrastMode     = "contrastMode"
	FieldControlPipe      = "controlPipe"
	FieldGridSortedBy     = "gridSortedBy"
	FieldGridSortedDesc   = "gridSortedDesc"
	FieldNodeDetails      = "nodeDetails"
	FieldPausedAt         = "pausedAt"
	FieldPinnedMetricType = "pinnedMetricType"
	FieldPinnedNetwork    = "pinnedNetwork"
	FieldPinnedSearches   = "pinnedSearches"
	FieldSearchQuery      = "searchQuery"
	FieldSelectedNodeID   = "selectedNodeId"
	FieldShowingNetworks  = "showingNetworks"
	FieldTopologyID       = "topologyId"
	FieldTopologyOptions  = "topologyOptions"
	FieldTopologyViewMode = "topologyViewMode"
)

var restorable = map[string]bool{
	FieldContrastMode:     true,
	FieldControlPipe:      true,
	FieldGridSortedBy:     true,
	FieldGridSortedDesc:   true,
	FieldNodeDetails:      true,
	FieldPausedAt:         true,
	FieldPinnedMetricType: true,
	FieldPinnedNetwork:    true,
	FieldPinnedSearches:   true,
	FieldSearchQuery:      true,
	FieldSelectedNodeID:   true,
	FieldShowingNetworks:  true,
	FieldTopologyID:       true,
	FieldTopologyOptions:  true,
	FieldTopologyViewMode: true,
}

// Restorable reports whether field is part of the URL contract.
func Restorable(field string) bool {
	return restorable[field]
}

// Fields returns the restorable field names in sorted order.
func Fields() []string {
	out := make([]string, 0, len(restorable))
	for f := range restorable {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Known returns a copy of vs without fields outside the URL contract.
func Known(vs ViewState) ViewState {
	out := make(ViewState, len(vs))
	for k, v := range vs {
		if restorable[k] {
			out[k] = v
		}
	}
	return out
}

// Clone returns a shallow copy of vs.
func (vs ViewState) Clone() ViewState {
	out := make(ViewState, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Normalize converts a typed Go value (structs, typed slices and maps,
// integer kinds) into the closed shape set by running it through the
// canonical JSON model.
func Normalize(v any) (any, error) {
	data, err := urlcodec.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.New("E101").Wrap(err)
	}
	return out, nil
}
