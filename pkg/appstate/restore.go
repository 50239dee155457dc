package appstate

import (
	"github.com/abhisheknishant138/scope/pkg/viewstate"
)

// Restore applies a decoded view state over base and returns the result;
// base itself is not modified. Fields missing from vs keep their base value,
// which is what makes a minimal view state a complete description. Unknown
// fields and values of the wrong shape are ignored.
func Restore(base *State, vs viewstate.ViewState) *State {
	s := base.Clone()
	if s == nil {
		s = Initial()
	}

	for field, value := range vs {
		switch field {
		case viewstate.FieldContrastMode:
			if b, ok := value.(bool); ok {
				s.ContrastMode = b
			}
		case viewstate.FieldControlPipe:
			if cp, ok := controlPipeFrom(value); ok {
				s.ControlPipes = []ControlPipe{cp}
			}
		case viewstate.FieldGridSortedBy:
			setString(&s.GridSortedBy, value)
		case viewstate.FieldGridSortedDesc:
			switch b := value.(type) {
			case bool:
				s.GridSortedDesc = &b
			case nil:
				s.GridSortedDesc = nil
			}
		case viewstate.FieldNodeDetails:
			if details, ok := nodeDetailsFrom(value); ok {
				s.NodeDetails = details
			}
		case viewstate.FieldPausedAt:
			setString(&s.PausedAt, value)
		case viewstate.FieldPinnedMetricType:
			setString(&s.PinnedMetricType, value)
		case viewstate.FieldPinnedNetwork:
			setString(&s.PinnedNetwork, value)
		case viewstate.FieldPinnedSearches:
			if l, ok := stringsFrom(value); ok {
				s.PinnedSearches = l
			}
		case viewstate.FieldSearchQuery:
			setString(&s.SearchQuery, value)
		case viewstate.FieldSelectedNodeID:
			setString(&s.SelectedNodeID, value)
		case viewstate.FieldShowingNetworks:
			if b, ok := value.(bool); ok {
				s.ShowingNetworks = b
			}
		case viewstate.FieldTopologyID:
			setString(&s.CurrentTopologyID, value)
		case viewstate.FieldTopologyOptions:
			if m, ok := value.(map[string]any); ok {
				s.TopologyOptions = mergeOptions(s.TopologyOptions, m)
			}
		case viewstate.FieldTopologyViewMode:
			if mode, ok := value.(string); ok && mode != "" {
				s.TopologyViewMode = mode
			}
		}
	}
	return s
}

// setString assigns a string value; null clears the field.
func setString(dst *string, value any) {
	switch v := value.(type) {
	case string:
		*dst = v
	case nil:
		*dst = ""
	}
}

func stringsFrom(value any) ([]string, bool) {
	l, ok := value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

func controlPipeFrom(value any) (ControlPipe, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return ControlPipe{}, false
	}
	id, _ := m["id"].(string)
	if id == "" {
		return ControlPipe{}, false
	}
	cp := ControlPipe{ID: id}
	cp.NodeID, _ = m["nodeId"].(string)
	cp.Raw, _ = m["raw"].(bool)
	cp.ResizeTTYControl, _ = m["resizeTtyControl"].(string)
	cp.Control, _ = m["control"].(string)
	return cp, true
}

func nodeDetailsFrom(value any) ([]NodeDetail, bool) {
	l, ok := value.([]any)
	if !ok {
		return nil, false
	}
	out := make([]NodeDetail, 0, len(l))
	for _, item := range l {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, _ := m["id"].(string)
		topologyID, _ := m["topologyId"].(string)
		if id == "" {
			continue
		}
		out = append(out, NodeDetail{ID: id, TopologyID: topologyID})
	}
	return out, true
}

// mergeOptions overlays the option diff in m on top of base.
func mergeOptions(base TopologyOptions, m map[string]any) TopologyOptions {
	out := base.clone()
	if out == nil {
		out = TopologyOptions{}
	}
	for topo, raw := range m {
		opts, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		dst := out[topo]
		if dst == nil {
			dst = map[string][]string{}
			out[topo] = dst
		}
		for id, v := range opts {
			switch vv := v.(type) {
			case string:
				dst[id] = []string{vv}
			case []any:
				if values, ok := stringsFrom(vv); ok {
					dst[id] = values
				}
			}
		}
	}
	return out
}
