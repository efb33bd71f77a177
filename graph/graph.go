// Package graph implements the Stof document graph (spec §4.3): nodes,
// roots, attached data, and the operations (create/insert, attach/detach,
// find, move, absorb/merge) that every format plug-in and interpreter
// instruction composes with.
//
// Grounded in the teacher's internal/registry.Registry for the "name ->
// handle, with alias/path lookup, guarded by a mutex" shape, generalized
// from a flat provider map to a parent/child forest.
package graph

import (
	"fmt"
	"strings"
	"sync"

	serr "stof/errors"
	"stof/value"
)

// Node is a vertex in the graph: a stable id, name, optional parent, ordered
// children, ordered attached-data ids, and an attribute map (spec §3).
type Node struct {
	ID         value.NodeID
	Name       string
	Parent     value.NodeID // 0 means root (no parent)
	HasParent  bool
	Children   []value.NodeID
	Data       []value.DataID
	Attributes map[string]value.Value
}

// Data is the common capability set every attachment kind implements
// (spec §4.4): clone, serialize-ready access, a kind tag, and cache
// invalidation for computed fields.
type Data interface {
	KindTag() string
	Clone() Data
	InvalidateCache()
}

// Graph owns nodes, the data pool, and the ordered root list.
type Graph struct {
	mu sync.RWMutex

	nodes   map[value.NodeID]*Node
	data    map[value.DataID]Data
	roots   []value.NodeID // ordered, unique names among roots
	nextID  uint64
	idAlloc IDAllocator
}

// IDAllocator lets callers swap the id generation strategy (both a
// sequential counter and a uuid-backed allocator are exercised; see
// WithUUIDIDs).
type IDAllocator interface {
	NextNodeID() value.NodeID
	NextDataID() value.DataID
}

type counterAllocator struct {
	mu       sync.Mutex
	nodeNext uint64
	dataNext uint64
}

func (c *counterAllocator) NextNodeID() value.NodeID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodeNext++
	return value.NodeID(c.nodeNext)
}

func (c *counterAllocator) NextDataID() value.DataID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dataNext++
	return value.DataID(c.dataNext)
}

// New constructs an empty graph with the default sequential id allocator.
func New() *Graph {
	return NewWithAllocator(&counterAllocator{})
}

// NewWithAllocator lets a caller install an alternate id strategy, e.g.
// a uuid-backed allocator (see WithUUIDIDs).
func NewWithAllocator(alloc IDAllocator) *Graph {
	return &Graph{
		nodes:   make(map[value.NodeID]*Node),
		data:    make(map[value.DataID]Data),
		idAlloc: alloc,
	}
}

// InsertRoot creates a new root node; root names must be unique among roots.
func (g *Graph) InsertRoot(name string) (value.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, rid := range g.roots {
		if g.nodes[rid].Name == name {
			return 0, fmt.Errorf("insert root %q: %w", name, serr.ErrDuplicateRoot)
		}
	}
	id := g.idAlloc.NextNodeID()
	n := &Node{ID: id, Name: name, Attributes: make(map[string]value.Value)}
	g.nodes[id] = n
	g.roots = append(g.roots, id)
	return id, nil
}

// InsertChild creates a node under parent.
func (g *Graph) InsertChild(parent value.NodeID, name string) (value.NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("insert child: %w: parent %d", serr.ErrNotFound, parent)
	}
	id := g.idAlloc.NextNodeID()
	n := &Node{ID: id, Name: name, Parent: parent, HasParent: true, Attributes: make(map[string]value.Value)}
	g.nodes[id] = n
	p.Children = append(p.Children, id)
	return id, nil
}

// Node returns the node for id, or false if it does not exist.
func (g *Graph) Node(id value.NodeID) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Roots returns the ordered list of root node ids.
func (g *Graph) Roots() []value.NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]value.NodeID(nil), g.roots...)
}

// RootByName finds a root by its exact name.
func (g *Graph) RootByName(name string) (value.NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, rid := range g.roots {
		if g.nodes[rid].Name == name {
			return rid, true
		}
	}
	return 0, false
}

// MainRoot returns the first root, creating "root" if none exists yet.
func (g *Graph) MainRoot() value.NodeID {
	roots := g.Roots()
	if len(roots) > 0 {
		return roots[0]
	}
	id, _ := g.InsertRoot("root")
	return id
}

// EnsurePath walks '.'- or '/'-separated path segments from start, creating
// any missing intermediate nodes, and returns the terminal node id.
func (g *Graph) EnsurePath(start value.NodeID, path string) (value.NodeID, error) {
	segs := splitPath(path)
	cur := start
	for _, seg := range segs {
		if seg == "" || seg == "self" {
			continue
		}
		if seg == "super" {
			n, ok := g.Node(cur)
			if !ok || !n.HasParent {
				return 0, fmt.Errorf("ensure path: %w: no parent above %d", serr.ErrNotFound, cur)
			}
			cur = n.Parent
			continue
		}
		child, ok := g.childNamed(cur, seg)
		if !ok {
			id, err := g.InsertChild(cur, seg)
			if err != nil {
				return 0, err
			}
			child = id
		}
		cur = child
	}
	return cur, nil
}

func splitPath(path string) []string {
	path = strings.ReplaceAll(path, "/", ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func (g *Graph) childNamed(parent value.NodeID, name string) (value.NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	p, ok := g.nodes[parent]
	if !ok {
		return 0, false
	}
	for _, cid := range p.Children {
		if c, ok := g.nodes[cid]; ok && c.Name == name {
			return cid, true
		}
	}
	return 0, false
}

// FindNode resolves a node by id-as-path is not supported; by name/path:
// path resolution searches down from start then widens to roots (spec §4.3).
func (g *Graph) FindNode(start value.NodeID, path string) (value.NodeID, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return start, true
	}
	if cur, ok := g.resolveDown(start, segs); ok {
		return cur, true
	}
	// widen: try each root.
	for _, rid := range g.Roots() {
		if rid == start {
			continue
		}
		if cur, ok := g.resolveDown(rid, segs); ok {
			return cur, true
		}
	}
	return 0, false
}

func (g *Graph) resolveDown(start value.NodeID, segs []string) (value.NodeID, bool) {
	cur := start
	for _, seg := range segs {
		if seg == "" || seg == "self" {
			continue
		}
		if seg == "super" {
			n, ok := g.Node(cur)
			if !ok || !n.HasParent {
				return 0, false
			}
			cur = n.Parent
			continue
		}
		child, ok := g.childNamed(cur, seg)
		if !ok {
			return 0, false
		}
		cur = child
	}
	return cur, true
}

// Path renders the dotted path from the nearest root down to id.
func (g *Graph) Path(id value.NodeID) string {
	var segs []string
	cur := id
	for {
		n, ok := g.Node(cur)
		if !ok {
			break
		}
		segs = append([]string{n.Name}, segs...)
		if !n.HasParent {
			break
		}
		cur = n.Parent
	}
	return strings.Join(segs, ".")
}
