package format

import (
	"encoding/base64"
	"fmt"
	"math"

	gonanoid "github.com/matoous/go-nanoid/v2"

	serr "stof/errors"
	"stof/graph"
	"stof/value"
)

// arrayChildPrefix names the synthetic child nodes an array-of-objects
// field points into (spec §4.9: "Array of objects -> child nodes named
// _a_obj<random7> inside an array-valued field").
const arrayChildPrefix = "_a_obj"

// DecodeTree walks a generic Go tree (the shape encoding/json, yaml.v3,
// BurntSushi/toml, and clbanning/mxj all produce: map[string]interface{},
// []interface{}, and scalars) into node, following the canonical graph<->
// tree mapping every tree-shaped format shares (spec §4.9).
func DecodeTree(g *graph.Graph, node value.NodeID, tree interface{}) *serr.Error {
	obj, ok := tree.(map[string]interface{})
	if !ok {
		// A bare scalar/array document: attach it under a single field so
		// it still round-trips through export.
		v, serr := decodeValue(g, node, nil, tree)
		if serr != nil {
			return serr
		}
		_, err := g.PutData(node, graph.NewField("value", v))
		if err != nil {
			return wrapFmt(err)
		}
		return nil
	}
	for key, raw := range obj {
		switch v := raw.(type) {
		case map[string]interface{}:
			child, err := g.EnsurePath(node, key)
			if err != nil {
				return wrapFmt(err)
			}
			if serr := DecodeTree(g, child, v); serr != nil {
				return serr
			}
		default:
			val, serr := decodeValue(g, node, nil, raw)
			if serr != nil {
				return serr
			}
			if _, err := g.PutData(node, graph.NewField(key, val)); err != nil {
				return wrapFmt(err)
			}
		}
	}
	return nil
}

// decodeValue converts one scalar/array/object leaf value, recursing into
// DecodeTree for nested objects and spinning up synthetic "_a_obj" children
// for arrays of objects.
func decodeValue(g *graph.Graph, node value.NodeID, _ interface{}, raw interface{}) (value.Value, *serr.Error) {
	switch v := raw.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(v), nil
	case string:
		return value.Str(v), nil
	case float64:
		return numberValue(v), nil
	case int:
		return value.Int(int64(v)), nil
	case int64:
		return value.Int(v), nil
	case []byte:
		return value.Blob(v), nil
	case []interface{}:
		if allObjects(v) {
			items := make([]value.Value, 0, len(v))
			for _, elem := range v {
				name, nerr := gonanoid.New(7)
				if nerr != nil {
					return value.Void(), serr.Wrap(0, serr.Fmt("tree"), nerr)
				}
				child, err := g.InsertChild(node, arrayChildPrefix+name)
				if err != nil {
					return value.Void(), wrapFmt(err)
				}
				if serr := DecodeTree(g, child, elem); serr != nil {
					return value.Void(), serr
				}
				items = append(items, value.Obj(child))
			}
			return value.List(items), nil
		}
		items := make([]value.Value, 0, len(v))
		for _, elem := range v {
			iv, serr := decodeValue(g, node, nil, elem)
			if serr != nil {
				return value.Void(), serr
			}
			items = append(items, iv)
		}
		return value.List(items), nil
	case map[string]interface{}:
		child, err := g.InsertChild(node, arrayChildPrefix+fmt.Sprintf("%d", node))
		if err != nil {
			return value.Void(), wrapFmt(err)
		}
		if serr := DecodeTree(g, child, v); serr != nil {
			return value.Void(), serr
		}
		return value.Obj(child), nil
	default:
		return value.Str(fmt.Sprintf("%v", v)), nil
	}
}

func numberValue(f float64) value.Value {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= math.MinInt64 && f <= math.MaxInt64 {
		return value.Int(int64(f))
	}
	return value.Float(f)
}

func allObjects(items []interface{}) bool {
	if len(items) == 0 {
		return false
	}
	for _, it := range items {
		if _, ok := it.(map[string]interface{}); !ok {
			return false
		}
	}
	return true
}

func wrapFmt(err error) *serr.Error { return serr.Wrap(0, serr.Fmt("tree"), err) }

// EncodeTree renders node as a generic Go tree suitable for encoding/json,
// yaml.v3, BurntSushi/toml, or clbanning/mxj to marshal (spec §4.9).
// Fields with @export=false are omitted; array-of-objects fields point at
// synthetic children that are excluded from the plain-child walk so they
// are not emitted twice.
func EncodeTree(g *graph.Graph, node value.NodeID) interface{} {
	n, ok := g.Node(node)
	if !ok {
		return nil
	}
	result := make(map[string]interface{})
	referenced := make(map[value.NodeID]bool)

	for _, f := range g.FieldsOf(node) {
		if !f.Exported() {
			continue
		}
		if arr, isArrayOfObj := arrayOfObjects(f.Value); isArrayOfObj {
			out := make([]interface{}, 0, len(arr))
			for _, item := range arr {
				referenced[item.Obj] = true
				out = append(out, EncodeTree(g, item.Obj))
			}
			result[f.Name] = out
			continue
		}
		if tree, ok := encodeValue(g, f.Value); ok {
			result[f.Name] = tree
		}
	}

	for _, cid := range n.Children {
		if referenced[cid] {
			continue
		}
		cn, ok := g.Node(cid)
		if !ok {
			continue
		}
		result[cn.Name] = EncodeTree(g, cid)
	}
	return result
}

func arrayOfObjects(v value.Value) ([]value.Value, bool) {
	if v.Kind != value.KindList || v.List == nil || len(*v.List) == 0 {
		return nil, false
	}
	for _, item := range *v.List {
		if item.Kind != value.KindObj {
			return nil, false
		}
	}
	return *v.List, true
}

// encodeValue renders a scalar/container value as a generic tree leaf;
// ok is false for kinds that cannot be represented (Fn/Data/Promise),
// which callers skip.
func encodeValue(g *graph.Graph, v value.Value) (interface{}, bool) {
	v = value.Deref(v)
	switch v.Kind {
	case value.KindVoid, value.KindNull:
		return nil, true
	case value.KindBool:
		return v.B, true
	case value.KindStr:
		return v.S, true
	case value.KindBlob:
		return base64.StdEncoding.EncodeToString(v.Blob), true
	case value.KindInt:
		return v.I, true
	case value.KindFloat, value.KindUnits:
		return v.F, true
	case value.KindSemVer:
		return v.String(), true
	case value.KindObj:
		return EncodeTree(g, v.Obj), true
	case value.KindList:
		items := make([]interface{}, 0, len(*v.List))
		for _, item := range *v.List {
			if tree, ok := encodeValue(g, item); ok {
				items = append(items, tree)
			}
		}
		return items, true
	case value.KindTuple:
		items := make([]interface{}, 0, len(*v.Tup))
		for _, item := range *v.Tup {
			if tree, ok := encodeValue(g, item); ok {
				items = append(items, tree)
			}
		}
		return items, true
	case value.KindSet:
		items := make([]interface{}, 0, v.Set.Len())
		for _, item := range v.Set.Items() {
			if tree, ok := encodeValue(g, item); ok {
				items = append(items, tree)
			}
		}
		return items, true
	case value.KindMap:
		out := make(map[string]interface{}, v.Map.Len())
		for _, k := range v.Map.Keys() {
			mv, _ := v.Map.Get(k)
			if tree, ok := encodeValue(g, mv); ok {
				out[k.String()] = tree
			}
		}
		return out, true
	default:
		return nil, false
	}
}
