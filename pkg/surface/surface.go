// Package surface mirrors solved geometry onto rendering surfaces.
//
// A surface is a drawable region bound to a layout node by id. After every
// solve, [Manager.Sync] copies each node's size and position onto its
// surface. Ids with no matching node are logged and skipped; the surface
// keeps the geometry it had before.
package surface

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crystal/pkg/layout"
)

// Surface is the geometry of one bound node.
type Surface struct {
	ID       string          `json:"id"`
	Kind     string          `json:"kind,omitempty"`
	Size     layout.Size     `json:"size"`
	Position layout.Position `json:"position"`

	// Bound is false until a sync has found the surface's node.
	Bound bool `json:"bound"`
}

// Manager owns a set of surfaces keyed by node id. It is not safe for
// concurrent use.
type Manager struct {
	logger   *log.Logger
	order    []string
	surfaces map[string]*Surface
}

// NewManager returns a manager with one surface per distinct id, kept in
// the order given. A nil logger discards output.
func NewManager(logger *log.Logger, ids ...string) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Manager{logger: logger, surfaces: make(map[string]*Surface, len(ids))}
	for _, id := range ids {
		m.Add(id)
	}
	return m
}

// Add registers a surface for id. It reports false if one already exists.
func (m *Manager) Add(id string) bool {
	if _, ok := m.surfaces[id]; ok {
		return false
	}
	m.surfaces[id] = &Surface{ID: id}
	m.order = append(m.order, id)
	return true
}

// Len returns the number of surfaces.
func (m *Manager) Len() int { return len(m.order) }

// Sync copies geometry from the solved tree onto every surface and returns
// the ids that matched no node. When ids repeat in the tree, the first node
// in pre-order wins, as with [layout.Find].
func (m *Manager) Sync(root layout.Node) (missing []string) {
	nodes := make(map[string]layout.Node)
	for n := range layout.Walk(root) {
		if _, ok := nodes[n.ID()]; !ok {
			nodes[n.ID()] = n
		}
	}

	for _, id := range m.order {
		n, ok := nodes[id]
		if !ok {
			m.logger.Warn("no layout node for surface", "id", id)
			missing = append(missing, id)
			continue
		}
		s := m.surfaces[id]
		s.Kind = n.Kind().String()
		s.Size = n.Size()
		s.Position = n.Position()
		s.Bound = true
		m.logger.Debug("surface synced", "id", id, "size", s.Size, "position", s.Position)
	}
	return missing
}

// Surfaces returns a copy of every surface in registration order.
func (m *Manager) Surfaces() []Surface {
	out := make([]Surface, len(m.order))
	for i, id := range m.order {
		out[i] = *m.surfaces[id]
	}
	return out
}

// Lookup returns the surface for id.
func (m *Manager) Lookup(id string) (Surface, bool) {
	s, ok := m.surfaces[id]
	if !ok {
		return Surface{}, false
	}
	return *s, true
}
