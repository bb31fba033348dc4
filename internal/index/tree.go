// Package index materializes the system → planet → resource → organism
// hierarchy lazily. Children exist only while their parent is expanded and
// are rebuilt from the backing records on every expansion.
//
// A Tree is not safe for concurrent use; the query service serializes access.
package index

import (
	"fmt"
	"strconv"

	"starfieldpedia/internal/catalog"
	"starfieldpedia/internal/merge"
	"starfieldpedia/pkg/domain"
)

// Source is the loaded system table the tree reads from.
type Source interface {
	SystemCount() int
	System(i int) (domain.SystemRecord, bool)
}

// Tree is the hierarchical index over one loaded table.
type Tree struct {
	src   Source
	cat   *catalog.Catalog
	root  *node
	nodes map[string]*node
}

// New builds a tree whose root holds one collapsed system node per system.
// rootID prefixes every node ID; the service passes the load generation so
// IDs from a previous load never resolve.
func New(src Source, cat *catalog.Catalog, rootID string) *Tree {
	if cat == nil {
		cat = catalog.Empty()
	}
	if rootID == "" {
		rootID = "root"
	}
	t := &Tree{src: src, cat: cat, nodes: make(map[string]*node)}
	t.root = &node{id: rootID, kind: KindRoot, state: Expanded, descriptor: Descriptor{Expandable: true}}
	t.nodes[rootID] = t.root
	for i := 0; i < src.SystemCount(); i++ {
		sys, _ := src.System(i)
		child := &node{
			id:         rootID + "/s" + strconv.Itoa(i),
			kind:       KindSystem,
			key:        sys.Name,
			parent:     t.root,
			system:     i,
			descriptor: Descriptor{Expandable: true},
		}
		t.root.children = append(t.root.children, child)
		t.nodes[child.id] = child
	}
	return t
}

// Root describes the root node.
func (t *Tree) Root() Descriptor { return t.root.describe() }

// Find resolves a node by ID within the current tree.
func (t *Tree) Find(id string) (Descriptor, error) {
	n, err := t.lookup(id)
	if err != nil {
		return Descriptor{}, err
	}
	return n.describe(), nil
}

// Children returns the currently materialized children of id.
func (t *Tree) Children(id string) ([]Descriptor, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	return describeAll(n.children), nil
}

// Expand materializes the children of id and returns them. Expanding an
// expanded node returns its current children. Leaves, and inorganic resource
// headers no organism supplies, have no children and stay collapsed. If the backing record cannot
// be located the node is left collapsed and a domain.ErrNotFound is returned.
func (t *Tree) Expand(id string) ([]Descriptor, error) {
	n, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.state == Expanded {
		return describeAll(n.children), nil
	}
	if !n.descriptor.Expandable {
		return []Descriptor{}, nil
	}
	var children []*node
	switch n.kind {
	case KindSystem:
		children, err = t.planets(n)
	case KindPlanet:
		children, err = t.resources(n)
	case KindResourceHeader:
		children, err = t.providers(n)
	}
	if err != nil {
		return nil, err
	}
	n.children = children
	n.state = Expanded
	for _, c := range children {
		t.nodes[c.id] = c
	}
	return describeAll(children), nil
}

// Collapse destroys every descendant of id and marks it collapsed.
// Collapsing a collapsed node is a no-op. The root cannot be collapsed.
func (t *Tree) Collapse(id string) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if n.kind == KindRoot {
		return fmt.Errorf("root node cannot be collapsed")
	}
	if n.state == Collapsed {
		return nil
	}
	t.drop(n.children)
	n.children = nil
	n.state = Collapsed
	return nil
}

func (t *Tree) drop(nodes []*node) {
	for _, c := range nodes {
		t.drop(c.children)
		c.children = nil
		c.parent = nil
		delete(t.nodes, c.id)
	}
}

func (t *Tree) lookup(id string) (*node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, domain.ErrNotFound{Entity: domain.EntityNode, ID: id}
	}
	return n, nil
}

func (t *Tree) system(n *node) (domain.SystemRecord, error) {
	sys, ok := t.src.System(n.system)
	if !ok {
		return domain.SystemRecord{}, domain.ErrNotFound{Entity: domain.EntitySystem, ID: n.id}
	}
	return sys, nil
}

func (t *Tree) planet(n *node) (domain.PlanetRecord, error) {
	sys, err := t.system(n)
	if err != nil {
		return domain.PlanetRecord{}, err
	}
	if n.planet < 0 || n.planet >= len(sys.Planets) {
		return domain.PlanetRecord{}, domain.ErrNotFound{Entity: domain.EntityPlanet, ID: n.id}
	}
	return sys.Planets[n.planet], nil
}

func (t *Tree) planets(n *node) ([]*node, error) {
	sys, err := t.system(n)
	if err != nil {
		return nil, err
	}
	out := make([]*node, 0, len(sys.Planets))
	for i, p := range sys.Planets {
		out = append(out, &node{
			id:         n.id + "/p" + strconv.Itoa(i),
			kind:       KindPlanet,
			key:        p.Name,
			parent:     n,
			system:     n.system,
			planet:     i,
			descriptor: Descriptor{Expandable: true},
		})
	}
	return out, nil
}

func (t *Tree) resources(n *node) ([]*node, error) {
	p, err := t.planet(n)
	if err != nil {
		return nil, err
	}
	names := merge.Available(p)
	out := make([]*node, 0, len(names))
	for _, name := range names {
		def := t.cat.Describe(name)
		row := ResourceRow{
			Name:     def.Name,
			Category: string(def.Category),
			Element:  def.ElementName,
			Rarity:   def.Rarity,
			State:    def.StateOfMatter,
			Weight:   def.Weight,
			Value:    def.Value,
			Color:    def.DisplayColor,
		}
		out = append(out, &node{
			id:       n.id + "/r:" + name,
			kind:     KindResourceHeader,
			key:      def.Name,
			parent:   n,
			system:   n.system,
			planet:   n.planet,
			resource: name,
			descriptor: Descriptor{
				Expandable: def.Category != domain.CategoryInorganic || len(merge.Providers(p, name)) > 0,
				Resource:   &row,
			},
		})
	}
	return out, nil
}

func (t *Tree) providers(n *node) ([]*node, error) {
	p, err := t.planet(n)
	if err != nil {
		return nil, err
	}
	if !p.HasResource(n.resource) {
		return nil, domain.ErrNotFound{Entity: domain.EntityResource, ID: n.id}
	}
	orgs := merge.Providers(p, n.resource)
	out := make([]*node, 0, len(orgs))
	for i, o := range orgs {
		out = append(out, &node{
			id:     n.id + "/o" + strconv.Itoa(i),
			kind:   KindProvenanceLeaf,
			key:    o.Name,
			parent: n,
			system: n.system,
			planet: n.planet,
			descriptor: Descriptor{Provenance: &Provenance{
				Name:        o.Name,
				Temperament: o.Temperament,
				Biomes:      o.BiomesText(),
				Outpost:     o.OutpostText(),
			}},
		})
	}
	return out, nil
}

func describeAll(nodes []*node) []Descriptor {
	out := make([]Descriptor, len(nodes))
	for i, n := range nodes {
		out[i] = n.describe()
	}
	return out
}
