package graph

import (
	"bytes"
	"encoding/gob"

	"stof/value"
)

// init registers every concrete Data kind with encoding/gob so a Graph
// snapshot (format/native's binary mode, spec §4.9 "binary native format")
// can round-trip the Data pool's map[DataID]Data through a plain interface.
func init() {
	gob.Register(&Field{})
	gob.Register(&Function{})
	gob.Register(&Prototype{})
	gob.Register(&FuncDoc{})
	gob.Register(&FieldDoc{})
}

// wireNode mirrors Node with only the fields a snapshot needs to carry;
// Node itself is already all-exported, but Graph embeds it behind an
// unexported map so GobEncode/GobDecode live here rather than relying on
// gob's default struct-field walk of *Graph.
type wireNode struct {
	ID         value.NodeID
	Name       string
	Parent     value.NodeID
	HasParent  bool
	Children   []value.NodeID
	Data       []value.DataID
	Attributes map[string]value.Value
}

type wireGraph struct {
	Nodes map[value.NodeID]*wireNode
	Data  map[value.DataID]Data
	Roots []value.NodeID
}

// GobEncode snapshots the whole graph -- every node, every attached Data,
// and the root list -- preserving ids exactly as spec §4.9's binary native
// format requires, so references recorded elsewhere (a Prototype's DefNode,
// a field's Value{Kind:KindObj}) still resolve after a round trip.
func (g *Graph) GobEncode() ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	w := wireGraph{
		Nodes: make(map[value.NodeID]*wireNode, len(g.nodes)),
		Data:  g.data,
		Roots: append([]value.NodeID(nil), g.roots...),
	}
	for id, n := range g.nodes {
		w.Nodes[id] = &wireNode{
			ID: n.ID, Name: n.Name, Parent: n.Parent, HasParent: n.HasParent,
			Children:   append([]value.NodeID(nil), n.Children...),
			Data:       append([]value.DataID(nil), n.Data...),
			Attributes: n.Attributes,
		}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode restores a graph from GobEncode's output. The decoded graph's
// id allocator is seeded past the highest id seen so subsequently-created
// nodes/data never collide with restored ones; Absorb (spec §4.9's merge
// semantics) still remaps on collision when the caller merges this graph
// into another live one.
func (g *Graph) GobDecode(data []byte) error {
	var w wireGraph
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[value.NodeID]*Node, len(w.Nodes))
	for id, wn := range w.Nodes {
		attrs := wn.Attributes
		if attrs == nil {
			attrs = make(map[string]value.Value)
		}
		g.nodes[id] = &Node{
			ID: wn.ID, Name: wn.Name, Parent: wn.Parent, HasParent: wn.HasParent,
			Children: wn.Children, Data: wn.Data, Attributes: attrs,
		}
	}
	g.data = w.Data
	if g.data == nil {
		g.data = make(map[value.DataID]Data)
	}
	g.roots = w.Roots

	var maxNode value.NodeID
	for id := range g.nodes {
		if id > maxNode {
			maxNode = id
		}
	}
	var maxData value.DataID
	for id := range g.data {
		if id > maxData {
			maxData = id
		}
	}
	g.idAlloc = &counterAllocator{nodeNext: uint64(maxNode), dataNext: uint64(maxData)}
	return nil
}
