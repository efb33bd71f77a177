package graph

import (
	"fmt"

	serr "stof/errors"
	"stof/value"
)

// AttachData attaches an existing data id to node, sharing it (spec §3:
// "a data item may be attached to multiple nodes simultaneously").
func (g *Graph) AttachData(node value.NodeID, id value.DataID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[node]
	if !ok {
		return fmt.Errorf("attach data: %w: node %d", serr.ErrNotFound, node)
	}
	if _, ok := g.data[id]; !ok {
		return fmt.Errorf("attach data: %w: data %d", serr.ErrNotFound, id)
	}
	for _, existing := range n.Data {
		if existing == id {
			return nil
		}
	}
	n.Data = append(n.Data, id)
	return nil
}

// PutData allocates a fresh data id, stores d, and attaches it to node.
func (g *Graph) PutData(node value.NodeID, d Data) (value.DataID, error) {
	g.mu.Lock()
	id := g.idAlloc.NextDataID()
	g.data[id] = d
	n, ok := g.nodes[node]
	if !ok {
		delete(g.data, id)
		g.mu.Unlock()
		return 0, fmt.Errorf("put data: %w: node %d", serr.ErrNotFound, node)
	}
	n.Data = append(n.Data, id)
	g.mu.Unlock()
	return id, nil
}

// GetData resolves a data id to its stored value.
func (g *Graph) GetData(id value.DataID) (Data, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	d, ok := g.data[id]
	return d, ok
}

// DetachData removes id from node's attached list, destroying the data once
// no node still holds it; if everywhere is true, it removes id from every
// node and destroys the underlying data, per spec §3's detach/destroy
// distinction.
func (g *Graph) DetachData(node value.NodeID, id value.DataID, everywhere bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if everywhere {
		for _, n := range g.nodes {
			n.Data = removeDataID(n.Data, id)
		}
		delete(g.data, id)
		return
	}
	if n, ok := g.nodes[node]; ok {
		n.Data = removeDataID(n.Data, id)
	}
	if !g.dataStillAttached(id) {
		delete(g.data, id)
	}
}

func (g *Graph) dataStillAttached(id value.DataID) bool {
	for _, n := range g.nodes {
		for _, d := range n.Data {
			if d == id {
				return true
			}
		}
	}
	return false
}

func removeDataID(list []value.DataID, id value.DataID) []value.DataID {
	out := list[:0]
	for _, d := range list {
		if d != id {
			out = append(out, d)
		}
	}
	return out
}

// RemoveNode deletes node and every descendant, detaching/destroying any
// data solely owned by them (spec §3 invariant / §8 testable property 1).
func (g *Graph) RemoveNode(id value.NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeNodeLocked(id)
}

func (g *Graph) removeNodeLocked(id value.NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for _, c := range append([]value.NodeID(nil), n.Children...) {
		g.removeNodeLocked(c)
	}
	for _, did := range n.Data {
		stillAttached := false
		for other, on := range g.nodes {
			if other == id {
				continue
			}
			for _, d := range on.Data {
				if d == did {
					stillAttached = true
					break
				}
			}
			if stillAttached {
				break
			}
		}
		if !stillAttached {
			delete(g.data, did)
		}
	}
	if n.HasParent {
		if p, ok := g.nodes[n.Parent]; ok {
			p.Children = removeNodeID(p.Children, id)
		}
	} else {
		g.roots = removeNodeID(g.roots, id)
	}
	delete(g.nodes, id)
}

func removeNodeID(list []value.NodeID, id value.NodeID) []value.NodeID {
	out := list[:0]
	for _, n := range list {
		if n != id {
			out = append(out, n)
		}
	}
	return out
}

// MoveNode relocates node under newParent (or promotes it to a root when
// newParent is the zero id with asRoot=true), refusing moves that would
// create a cycle.
func (g *Graph) MoveNode(node, newParent value.NodeID, asRoot bool, newName string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[node]
	if !ok {
		return fmt.Errorf("move node: %w: %d", serr.ErrNotFound, node)
	}
	if !asRoot {
		if _, ok := g.nodes[newParent]; !ok {
			return fmt.Errorf("move node: %w: new parent %d", serr.ErrNotFound, newParent)
		}
		if node == newParent || g.isAncestorLocked(node, newParent) {
			return fmt.Errorf("move node %d under %d: %w", node, newParent, serr.ErrCycle)
		}
	}

	if n.HasParent {
		if p, ok := g.nodes[n.Parent]; ok {
			p.Children = removeNodeID(p.Children, node)
		}
	} else {
		g.roots = removeNodeID(g.roots, node)
	}

	if newName != "" {
		n.Name = newName
	}

	if asRoot {
		n.HasParent = false
		n.Parent = 0
		g.roots = append(g.roots, node)
		return nil
	}
	n.HasParent = true
	n.Parent = newParent
	g.nodes[newParent].Children = append(g.nodes[newParent].Children, node)
	return nil
}

func (g *Graph) isAncestorLocked(ancestor, node value.NodeID) bool {
	cur := node
	for {
		n, ok := g.nodes[cur]
		if !ok || !n.HasParent {
			return false
		}
		if n.Parent == ancestor {
			return true
		}
		cur = n.Parent
	}
}

// Absorb merges other into g. Root name collisions merge the incoming
// root's children/data into the first-found existing root of that name
// (spec §4.3's documented, intentionally surprising policy; §9 Open
// Questions flags this for a future explicit-policy revision). Node and
// data ids from other are preserved by remapping only on collision with an
// id already present in g, so absorb_external_node-style inbound
// references stay valid for the common case of disjoint id spaces.
func (g *Graph) Absorb(other *Graph) map[value.NodeID]value.NodeID {
	other.mu.RLock()
	defer other.mu.RUnlock()
	g.mu.Lock()
	defer g.mu.Unlock()

	remap := make(map[value.NodeID]value.NodeID)
	dataRemap := make(map[value.DataID]value.DataID)

	for id, d := range other.data {
		if _, collide := g.data[id]; collide {
			nid := g.idAlloc.NextDataID()
			g.data[nid] = d.Clone()
			dataRemap[id] = nid
		} else {
			g.data[id] = d.Clone()
			dataRemap[id] = id
		}
	}

	var assignIDs func(id value.NodeID) value.NodeID
	assignIDs = func(id value.NodeID) value.NodeID {
		if nid, ok := remap[id]; ok {
			return nid
		}
		if _, collide := g.nodes[id]; collide {
			nid := g.idAlloc.NextNodeID()
			remap[id] = nid
			return nid
		}
		remap[id] = id
		return id
	}

	for _, rid := range other.roots {
		on := other.nodes[rid]
		if existingRoot, ok := g.rootByNameLocked(on.Name); ok {
			remap[rid] = existingRoot
			g.mergeChildrenLocked(existingRoot, other, on, remap, dataRemap, assignIDs)
			continue
		}
		newID := assignIDs(rid)
		copied := copyNodeRemapped(on, newID, 0, false, dataRemap)
		g.nodes[newID] = copied
		g.roots = append(g.roots, newID)
		g.copyDescendantsLocked(other, on, newID, remap, dataRemap, assignIDs)
	}
	return remap
}

func (g *Graph) rootByNameLocked(name string) (value.NodeID, bool) {
	for _, rid := range g.roots {
		if g.nodes[rid].Name == name {
			return rid, true
		}
	}
	return 0, false
}

func (g *Graph) mergeChildrenLocked(
	intoID value.NodeID, other *Graph, srcParent *Node,
	remap map[value.NodeID]value.NodeID, dataRemap map[value.DataID]value.DataID,
	assignIDs func(value.NodeID) value.NodeID,
) {
	into := g.nodes[intoID]
	for _, did := range srcParent.Data {
		into.Data = append(into.Data, dataRemap[did])
	}
	for k, v := range srcParent.Attributes {
		into.Attributes[k] = v
	}
	for _, cid := range srcParent.Children {
		cn := other.nodes[cid]
		newID := assignIDs(cid)
		copied := copyNodeRemapped(cn, newID, intoID, true, dataRemap)
		g.nodes[newID] = copied
		into.Children = append(into.Children, newID)
		g.copyDescendantsLocked(other, cn, newID, remap, dataRemap, assignIDs)
	}
}

func (g *Graph) copyDescendantsLocked(
	other *Graph, srcNode *Node, newParentID value.NodeID,
	remap map[value.NodeID]value.NodeID, dataRemap map[value.DataID]value.DataID,
	assignIDs func(value.NodeID) value.NodeID,
) {
	for _, cid := range srcNode.Children {
		cn := other.nodes[cid]
		newID := assignIDs(cid)
		copied := copyNodeRemapped(cn, newID, newParentID, true, dataRemap)
		g.nodes[newID] = copied
		g.nodes[newParentID].Children = append(g.nodes[newParentID].Children, newID)
		g.copyDescendantsLocked(other, cn, newID, remap, dataRemap, assignIDs)
	}
}

func copyNodeRemapped(src *Node, id, parent value.NodeID, hasParent bool, dataRemap map[value.DataID]value.DataID) *Node {
	out := &Node{
		ID: id, Name: src.Name, Parent: parent, HasParent: hasParent,
		Attributes: make(map[string]value.Value, len(src.Attributes)),
	}
	for k, v := range src.Attributes {
		out.Attributes[k] = v
	}
	for _, did := range src.Data {
		out.Data = append(out.Data, dataRemap[did])
	}
	return out
}

// Dump renders a diagnostic tree, grounded in the teacher's dbg/trace style
// (internal/model's JSON-tagged Result/Change structs printed for diagnosis).
func (g *Graph) Dump() string {
	var out string
	for _, rid := range g.Roots() {
		out += g.dumpNode(rid, 0)
	}
	return out
}

func (g *Graph) dumpNode(id value.NodeID, depth int) string {
	n, ok := g.Node(id)
	if !ok {
		return ""
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	out := fmt.Sprintf("%s%s (id=%d, data=%d)\n", indent, n.Name, n.ID, len(n.Data))
	for _, c := range n.Children {
		out += g.dumpNode(c, depth+1)
	}
	return out
}
