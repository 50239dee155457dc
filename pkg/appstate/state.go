// Package appstate models the application state the view-state router reads
// from, and projects it onto the URL-restorable field set.
//
// Extract is the single place to update when a new piece of state must
// survive a reload or a bookmark; everything downstream (reducing, encoding,
// navigation) works on the projected view state only.
package appstate

// View modes.
const (
	GraphViewMode    = "topo"
	TableViewMode    = "table"
	ResourceViewMode = "resources"
)

// ControlPipe describes an open terminal session attached to a node.
type ControlPipe struct {
	ID               string `json:"id"`
	NodeID           string `json:"nodeId,omitempty"`
	Raw              bool   `json:"raw,omitempty"`
	ResizeTTYControl string `json:"resizeTtyControl,omitempty"`
	Control          string `json:"control,omitempty"`
}

// NodeDetail is an open details panel. Details holds whatever the panel
// loaded from the backend and never reaches the URL.
type NodeDetail struct {
	ID         string         `json:"id"`
	TopologyID string         `json:"topologyId"`
	Label      string         `json:"label,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// TopologyOption is a selectable option of a topology, e.g. "system" with
// values "application" and "all".
type TopologyOption struct {
	ID           string `json:"id"`
	DefaultValue string `json:"defaultValue"`
}

// Topology is a loaded topology definition.
type Topology struct {
	ID            string           `json:"id"`
	Name          string           `json:"name,omitempty"`
	Options       []TopologyOption `json:"options,omitempty"`
	SubTopologies []Topology       `json:"sub_topologies,omitempty"`
}

// TopologyOptions maps a topology id to its selected options, each option
// holding one or more values.
type TopologyOptions map[string]map[string][]string

// State is the application state snapshot. Empty strings and nil pointers
// mean "not set".
type State struct {
	ContrastMode      bool            `json:"contrastMode"`
	ControlPipes      []ControlPipe   `json:"controlPipes"`
	CurrentTopologyID string          `json:"currentTopologyId"`
	GridSortedBy      string          `json:"gridSortedBy"`
	GridSortedDesc    *bool           `json:"gridSortedDesc"`
	NodeDetails       []NodeDetail    `json:"nodeDetails"`
	PausedAt          string          `json:"pausedAt"`
	PinnedMetricType  string          `json:"pinnedMetricType"`
	PinnedNetwork     string          `json:"pinnedNetwork"`
	PinnedSearches    []string        `json:"pinnedSearches"`
	SearchQuery       string          `json:"searchQuery"`
	SelectedNodeID    string          `json:"selectedNodeId"`
	ShowingNetworks   bool            `json:"showingNetworks"`
	StoreViewState    bool            `json:"storeViewState"`
	TopologyOptions   TopologyOptions `json:"topologyOptions"`
	TopologyViewMode  string          `json:"topologyViewMode"`
	Topologies        []Topology      `json:"topologies"`
}

// Initial returns the state the application starts with.
func Initial() *State {
	return &State{
		ControlPipes:     []ControlPipe{},
		NodeDetails:      []NodeDetail{},
		PinnedSearches:   []string{},
		StoreViewState:   true,
		TopologyOptions:  TopologyOptions{},
		TopologyViewMode: GraphViewMode,
		Topologies:       []Topology{},
	}
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	c := *s
	c.ControlPipes = append([]ControlPipe(nil), s.ControlPipes...)
	c.NodeDetails = make([]NodeDetail, len(s.NodeDetails))
	copy(c.NodeDetails, s.NodeDetails)
	c.PinnedSearches = append([]string(nil), s.PinnedSearches...)
	c.Topologies = append([]Topology(nil), s.Topologies...)
	if s.GridSortedDesc != nil {
		v := *s.GridSortedDesc
		c.GridSortedDesc = &v
	}
	c.TopologyOptions = s.TopologyOptions.clone()
	return &c
}

func (o TopologyOptions) clone() TopologyOptions {
	if o == nil {
		return nil
	}
	out := make(TopologyOptions, len(o))
	for topo, opts := range o {
		m := make(map[string][]string, len(opts))
		for id, values := range opts {
			m[id] = append([]string(nil), values...)
		}
		out[topo] = m
	}
	return out
}

// ActiveControlPipe returns the top of the control pipe stack, the only one
// that is addressable by URL.
func (s *State) ActiveControlPipe() (ControlPipe, bool) {
	if len(s.ControlPipes) == 0 {
		return ControlPipe{}, false
	}
	return s.ControlPipes[len(s.ControlPipes)-1], true
}

// DefaultTopologyOptions returns the default option values of every loaded
// topology and sub-topology. It depends on which topologies are loaded, so
// callers must recompute it for every state rather than cache it.
func DefaultTopologyOptions(s *State) TopologyOptions {
	out := TopologyOptions{}
	var walk func([]Topology)
	walk = func(topologies []Topology) {
		for _, topo := range topologies {
			if len(topo.Options) > 0 {
				opts := make(map[string][]string, len(topo.Options))
				for _, opt := range topo.Options {
					opts[opt.ID] = []string{opt.DefaultValue}
				}
				out[topo.ID] = opts
			}
			walk(topo.SubTopologies)
		}
	}
	walk(s.Topologies)
	return out
}

// IsStoreViewStateEnabled reports whether view state should be mirrored into
// the persistent store.
func IsStoreViewStateEnabled(s *State) bool {
	return s != nil && s.StoreViewState
}
