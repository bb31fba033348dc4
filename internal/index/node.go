package index

// Kind identifies the level of a tree node.
type Kind string

const (
	KindRoot           Kind = "root"
	KindSystem         Kind = "system"
	KindPlanet         Kind = "planet"
	KindResourceHeader Kind = "resource"
	KindProvenanceLeaf Kind = "provenance"
)

// State is the materialization state of a node.
type State int

const (
	// Collapsed nodes have no materialized children.
	Collapsed State = iota
	// Expanded nodes own their materialized children.
	Expanded
)

func (s State) String() string {
	if s == Expanded {
		return "expanded"
	}
	return "collapsed"
}

// Columns are the display headers attached to an expanded planet's resource rows.
var Columns = []string{"Resource Name", "Element", "Rarity", "State", "Weight", "Value"}

// Provenance describes an organism supplying a resource, formatted for display.
type Provenance struct {
	Name        string `json:"name"`
	Temperament string `json:"temperament"`
	Biomes      string `json:"biomes"`
	Outpost     string `json:"outpost"`
}

// node is owned by its parent. parent is a back reference used for
// navigation and descendant cleanup only.
type node struct {
	id       string
	kind     Kind
	key      string
	parent   *node
	state    State
	children []*node

	system   int
	planet   int
	resource string

	descriptor Descriptor
}

// Descriptor is an immutable view of a node handed to callers.
type Descriptor struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	Key        string `json:"key"`
	ParentID   string `json:"parent_id,omitempty"`
	State      State  `json:"state"`
	Expandable bool   `json:"expandable"`
	// Resource is set on resource headers; unknown resources carry only a name.
	Resource *ResourceRow `json:"resource,omitempty"`
	// Provenance is set on provenance leaves.
	Provenance *Provenance `json:"provenance,omitempty"`
}

// ResourceRow is the catalog row displayed under a planet's columns.
type ResourceRow struct {
	Name     string  `json:"name"`
	Category string  `json:"category,omitempty"`
	Element  string  `json:"element"`
	Rarity   string  `json:"rarity"`
	State    string  `json:"state"`
	Weight   float64 `json:"weight"`
	Value    float64 `json:"value"`
	Color    string  `json:"color,omitempty"`
}

func (n *node) describe() Descriptor {
	d := n.descriptor
	d.ID = n.id
	d.Kind = n.kind
	d.Key = n.key
	d.State = n.state
	if n.parent != nil {
		d.ParentID = n.parent.id
	}
	if d.Resource != nil {
		row := *d.Resource
		d.Resource = &row
	}
	if d.Provenance != nil {
		prov := *d.Provenance
		d.Provenance = &prov
	}
	return d
}
