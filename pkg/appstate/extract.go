package appstate

import (
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

// Extract projects s onto the URL-restorable field set. Values are returned
// in the view-state shape set so they compare equal to decoded values.
//
//   - only the top of the control pipe stack is kept
//   - node detail panels are reduced to {id, topologyId}
//   - topology options are diffed against the defaults of the loaded
//     topologies
//   - showingNetworks appears only when set, and pinnedNetwork only when
//     networks are showing and one is pinned
func Extract(s *State) (viewstate.ViewState, error) {
	var controlPipe any
	if cp, ok := s.ActiveControlPipe(); ok {
		v, err := viewstate.Normalize(cp)
		if err != nil {
			return nil, err
		}
		controlPipe = v
	}

	nodeDetails := make([]any, 0, len(s.NodeDetails))
	for _, d := range s.NodeDetails {
		nodeDetails = append(nodeDetails, map[string]any{
			"id":         d.ID,
			"topologyId": d.TopologyID,
		})
	}

	var gridSortedDesc any
	if s.GridSortedDesc != nil {
		gridSortedDesc = *s.GridSortedDesc
	}

	pinnedSearches := make([]any, 0, len(s.PinnedSearches))
	for _, q := range s.PinnedSearches {
		pinnedSearches = append(pinnedSearches, q)
	}

	vs := viewstate.ViewState{
		viewstate.FieldContrastMode:     s.ContrastMode,
		viewstate.FieldControlPipe:      controlPipe,
		viewstate.FieldGridSortedBy:     optional(s.GridSortedBy),
		viewstate.FieldGridSortedDesc:   gridSortedDesc,
		viewstate.FieldNodeDetails:      nodeDetails,
		viewstate.FieldPausedAt:         optional(s.PausedAt),
		viewstate.FieldPinnedMetricType: optional(s.PinnedMetricType),
		viewstate.FieldPinnedSearches:   pinnedSearches,
		viewstate.FieldSearchQuery:      s.SearchQuery,
		viewstate.FieldSelectedNodeID:   optional(s.SelectedNodeID),
		viewstate.FieldTopologyID:       optional(s.CurrentTopologyID),
		viewstate.FieldTopologyOptions:  viewstate.DiffDeep(s.TopologyOptions.values(), DefaultTopologyOptions(s).values()),
		viewstate.FieldTopologyViewMode: s.TopologyViewMode,
	}

	if s.ShowingNetworks {
		vs[viewstate.FieldShowingNetworks] = true
		if s.PinnedNetwork != "" {
			vs[viewstate.FieldPinnedNetwork] = s.PinnedNetwork
		}
	}

	return vs, nil
}

// optional maps the empty string to nil, the "not set" value of nullable
// string fields.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// values converts o into the view-state shape set.
func (o TopologyOptions) values() map[string]any {
	out := make(map[string]any, len(o))
	for topo, opts := range o {
		m := make(map[string]any, len(opts))
		for id, values := range opts {
			l := make([]any, len(values))
			for i, v := range values {
				l[i] = v
			}
			m[id] = l
		}
		out[topo] = m
	}
	return out
}

// Defaults returns the defaults table for s: the initial state projected onto
// URL field names, with topology option defaults taken from the topologies
// loaded in s.
func Defaults(s *State) viewstate.DefaultsTable {
	initial := Initial()
	return viewstate.DefaultsTable{
		viewstate.FieldContrastMode:     initial.ContrastMode,
		viewstate.FieldControlPipe:      nil,
		viewstate.FieldGridSortedBy:     nil,
		viewstate.FieldGridSortedDesc:   nil,
		viewstate.FieldNodeDetails:      []any{},
		viewstate.FieldPausedAt:         nil,
		viewstate.FieldPinnedMetricType: nil,
		viewstate.FieldPinnedSearches:   []any{},
		viewstate.FieldSearchQuery:      initial.SearchQuery,
		viewstate.FieldSelectedNodeID:   nil,
		viewstate.FieldTopologyID:       nil,
		viewstate.FieldTopologyOptions:  DefaultTopologyOptions(s).values(),
		viewstate.FieldTopologyViewMode: initial.TopologyViewMode,
	}
}

// URLState returns the minimal view state of s.
func URLState(s *State) (viewstate.ViewState, error) {
	raw, err := Extract(s)
	if err != nil {
		return nil, err
	}
	return viewstate.Reduce(raw, Defaults(s)), nil
}
