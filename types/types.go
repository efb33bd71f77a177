// Package types implements Stof's user-defined Prototype types (spec
// §4.8): type declarations, `new T{...}` construction, `instanceof`,
// `upcast`, and `schemafy` schema validation.
//
// Grounded in original_source/src/model/libraries/obj/mod.rs's
// CreateType/Upcast/InstanceOf/Schemafy operations, adapted from its
// instruction-compiling approach (it builds a short-circuit jump chain
// of base instructions) to direct evaluation against an injected
// validator callback, since this engine's `interp.Scheduler` can already
// run an arbitrary instruction stream for one field at a time.
package types

import (
	serr "stof/errors"
	"stof/graph"
	"stof/value"
)

// Validator evaluates one schema field's `@schema` expression against a
// candidate value, returning whether it validates. Schemafy's caller
// supplies it; nothing in the interp package calls Schemafy, so within
// this module only tests supply one, as a plain func.
type Validator func(schemaVal, targetVal value.Value, attr value.Value) bool

// Declare installs defNode as the canonical definition of typeName:
// attaches a Prototype to it (parent left unset unless parentType names
// an existing type already declared under registry).
func Declare(g *graph.Graph, registry value.NodeID, defNode value.NodeID, typeName string, parentType string) error {
	proto := &graph.Prototype{TypeName: typeName, DefNode: defNode}
	if parentType != "" {
		if parentDef, ok := findTypeDef(g, registry, parentType); ok {
			proto.Parent = parentDef
			proto.HasParent = true
		}
	}
	_, err := g.PutData(defNode, proto)
	return err
}

func findTypeDef(g *graph.Graph, registry value.NodeID, typeName string) (value.NodeID, bool) {
	n, ok := g.Node(registry)
	if !ok {
		return 0, false
	}
	for _, child := range n.Children {
		if p, ok := g.PrototypeOf(child); ok && p.TypeName == typeName {
			return p.DefNode, true
		}
	}
	return 0, false
}

// New constructs an object node under parent, installs a Prototype
// pointing at the declared type defNode, and assigns provided field
// values, falling back to the type's declared defaults for any field not
// supplied. It errors if a required field (no default, per spec §4.8) is
// missing and schemafy is not in force.
func New(g *graph.Graph, parent value.NodeID, typeName string, defNode value.NodeID, fields map[string]value.Value, allowMissing bool) (value.NodeID, error) {
	node, err := g.InsertChild(parent, "")
	if err != nil {
		return 0, err
	}
	proto := &graph.Prototype{TypeName: typeName, DefNode: defNode}
	if defProto, ok := g.PrototypeOf(defNode); ok {
		proto.Parent, proto.HasParent = defProto.Parent, defProto.HasParent
	}
	if _, err := g.PutData(node, proto); err != nil {
		return 0, err
	}
	schema := g.FieldsOf(defNode)
	for _, sf := range schema {
		if v, ok := fields[sf.Name]; ok {
			if _, err := g.PutData(node, graph.NewField(sf.Name, v)); err != nil {
				return 0, err
			}
			continue
		}
		if def, ok := sf.Attributes["default"]; ok {
			if _, err := g.PutData(node, graph.NewField(sf.Name, def)); err != nil {
				return 0, err
			}
			continue
		}
		if sf.Value.Kind != value.KindVoid {
			if _, err := g.PutData(node, graph.NewField(sf.Name, sf.Value.Clone())); err != nil {
				return 0, err
			}
			continue
		}
		if opt, ok := sf.Attributes["optional"]; ok && value.Truthy(opt) {
			continue
		}
		if !allowMissing {
			return 0, serr.New(0, serr.KindDeclareInvalid, "missing required field %q for type %s", sf.Name, typeName)
		}
	}
	return node, nil
}

// Upcast drops node's current Prototype, promoting it to its parent type
// (spec §4.8). Returns whether a promotion occurred.
func Upcast(g *graph.Graph, node value.NodeID) (bool, error) {
	proto, ok := g.PrototypeOf(node)
	if !ok || !proto.HasParent {
		return false, nil
	}
	parentProto, ok := g.PrototypeOf(proto.Parent)
	if !ok {
		return false, nil
	}
	g.DetachData(node, findProtoDataID(g, node), false)
	if _, err := g.PutData(node, &graph.Prototype{TypeName: parentProto.TypeName, DefNode: parentProto.DefNode, Parent: parentProto.Parent, HasParent: parentProto.HasParent}); err != nil {
		return false, err
	}
	return true, nil
}

func findProtoDataID(g *graph.Graph, node value.NodeID) value.DataID {
	n, ok := g.Node(node)
	if !ok {
		return 0
	}
	for _, did := range n.Data {
		if d, ok := g.GetData(did); ok {
			if _, isProto := d.(*graph.Prototype); isProto {
				return did
			}
		}
	}
	return 0
}

// Schemafy validates every field of target whose name is declared on
// schema against schema's `@schema` attribute expression, optionally
// removing invalid fields and fields undeclared on schema (spec §4.8).
// Returns whether every declared field validated.
func Schemafy(g *graph.Graph, schemaNode, targetNode value.NodeID, removeInvalid, removeUndefined bool, validate Validator) bool {
	declared := make(map[string]bool)
	allValid := true
	for _, sf := range g.FieldsOf(schemaNode) {
		declared[sf.Name] = true
		attr, hasSchema := sf.Attributes["schema"]
		if !hasSchema {
			continue
		}
		_, tf, ok := g.FieldByName(targetNode, sf.Name)
		if !ok {
			continue
		}
		if !validate(sf.Value, tf.Value, attr) {
			allValid = false
			if removeInvalid {
				g.RemoveField(targetNode, sf.Name)
			}
		}
	}
	if removeUndefined {
		for _, tf := range g.FieldsOf(targetNode) {
			if !declared[tf.Name] {
				g.RemoveField(targetNode, tf.Name)
			}
		}
	}
	return allValid
}
