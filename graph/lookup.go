package graph

import "stof/value"

// FieldsOf returns the Field data attached to node, in attach order.
func (g *Graph) FieldsOf(node value.NodeID) []*Field {
	n, ok := g.Node(node)
	if !ok {
		return nil
	}
	var out []*Field
	for _, did := range n.Data {
		if d, ok := g.GetData(did); ok {
			if f, ok := d.(*Field); ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// FunctionsOf returns the Function data attached to node.
func (g *Graph) FunctionsOf(node value.NodeID) []*Function {
	n, ok := g.Node(node)
	if !ok {
		return nil
	}
	var out []*Function
	for _, did := range n.Data {
		if d, ok := g.GetData(did); ok {
			if fn, ok := d.(*Function); ok {
				out = append(out, fn)
			}
		}
	}
	return out
}

// PrototypeOf returns the Prototype attachment for node, if any.
func (g *Graph) PrototypeOf(node value.NodeID) (*Prototype, bool) {
	n, ok := g.Node(node)
	if !ok {
		return nil, false
	}
	for _, did := range n.Data {
		if d, ok := g.GetData(did); ok {
			if p, ok := d.(*Prototype); ok {
				return p, true
			}
		}
	}
	return nil, false
}

// FieldByName finds a field directly attached to node by name.
func (g *Graph) FieldByName(node value.NodeID, name string) (value.DataID, *Field, bool) {
	n, ok := g.Node(node)
	if !ok {
		return 0, nil, false
	}
	for _, did := range n.Data {
		if d, ok := g.GetData(did); ok {
			if f, ok := d.(*Field); ok && f.Name == name {
				return did, f, true
			}
		}
	}
	return 0, nil, false
}

// RemoveField detaches the named field from node, destroying it if no
// other node shares the attachment. Reports whether a field was found.
func (g *Graph) RemoveField(node value.NodeID, name string) bool {
	did, _, ok := g.FieldByName(node, name)
	if !ok {
		return false
	}
	g.DetachData(node, did, false)
	return true
}

// FunctionByName finds a function directly attached to node by name.
func (g *Graph) FunctionByName(node value.NodeID, name string) (value.DataID, *Function, bool) {
	n, ok := g.Node(node)
	if !ok {
		return 0, nil, false
	}
	for _, did := range n.Data {
		if d, ok := g.GetData(did); ok {
			if fn, ok := d.(*Function); ok && fn.Name == name {
				return did, fn, true
			}
		}
	}
	return 0, nil, false
}

// FindField resolves a field by dotted path from start: all but the last
// path segment are node traversal, the last segment names the field.
func (g *Graph) FindField(start value.NodeID, path string) (value.DataID, *Field, bool) {
	container, fieldName, ok := g.splitContainerPath(start, path)
	if !ok {
		return 0, nil, false
	}
	return g.FieldByName(container, fieldName)
}

// FindFunction resolves a function by dotted path the same way.
func (g *Graph) FindFunction(start value.NodeID, path string) (value.DataID, *Function, bool) {
	container, fnName, ok := g.splitContainerPath(start, path)
	if !ok {
		return 0, nil, false
	}
	return g.FunctionByName(container, fnName)
}

func (g *Graph) splitContainerPath(start value.NodeID, path string) (value.NodeID, string, bool) {
	segs := splitPath(path)
	if len(segs) == 0 {
		return 0, "", false
	}
	last := segs[len(segs)-1]
	container := start
	if len(segs) > 1 {
		var ok bool
		container, ok = g.FindNode(start, joinPath(segs[:len(segs)-1]))
		if !ok {
			return 0, "", false
		}
	}
	return container, last, true
}

func joinPath(segs []string) string {
	out := ""
	for i, s := range segs {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

// TypeDef finds the canonical defining node for a user-declared type: the
// node whose self-referential Prototype (DefNode == its own id) names
// typeName (spec §4.8 "defining node"). Declaration order is not defined,
// so every node is scanned; callers should cache the result where hot.
func (g *Graph) TypeDef(typeName string) (value.NodeID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for id, n := range g.nodes {
		for _, did := range n.Data {
			d, ok := g.data[did]
			if !ok {
				continue
			}
			if p, ok := d.(*Prototype); ok && p.DefNode == id && p.TypeName == typeName {
				return id, true
			}
		}
	}
	return 0, false
}

// InstanceOf walks the prototype chain starting at node looking for typeName.
func (g *Graph) InstanceOf(node value.NodeID, typeName string) bool {
	proto, ok := g.PrototypeOf(node)
	for ok {
		if proto.TypeName == typeName {
			return true
		}
		if !proto.HasParent {
			return false
		}
		proto, ok = g.PrototypeOf(proto.Parent)
	}
	return false
}
