package value

import (
	"bytes"
	"encoding/gob"

	stofunits "stof/units"
)

// wireValue is Value's encoding/gob wire shape: a flat struct of only
// exported fields, standing in for Value's unexported container pointers
// (orderedSet, omap) so the binary native format (package format/native)
// can snapshot a whole Graph with encoding/gob and get every field/value
// back, not just the scalar kinds.
type wireValue struct {
	Kind Kind

	B    bool
	S    string
	Blob []byte
	I    int64
	F    float64
	U    uint8 // units.Units, stored as its underlying uint8

	Obj  NodeID
	Fn   DataID
	Data DataID

	List []Value
	Tup  []Value

	SetItems []Value
	MapKeys  []Value
	MapVals  []Value

	SemVer *SemVer

	HasRef bool
	RefVal *Value

	Promise *Promise
}

// GobEncode lets encoding/gob serialize a Value directly, flattening Set
// and Map (backed by unexported orderedSet/omap types gob can't see into)
// into plain exported slices.
func (v Value) GobEncode() ([]byte, error) {
	w := wireValue{
		Kind: v.Kind, B: v.B, S: v.S, Blob: v.Blob, I: v.I, F: v.F, U: uint8(v.U),
		Obj: v.Obj, Fn: v.Fn, Data: v.Data, SemVer: v.SemVer, Promise: v.Promise,
	}
	if v.List != nil {
		w.List = *v.List
	}
	if v.Tup != nil {
		w.Tup = *v.Tup
	}
	if v.Set != nil {
		w.SetItems = v.Set.Items()
	}
	if v.Map != nil {
		for _, k := range v.Map.Keys() {
			mv, _ := v.Map.Get(k)
			w.MapKeys = append(w.MapKeys, k)
			w.MapVals = append(w.MapVals, mv)
		}
	}
	if v.Ref != nil {
		w.HasRef = true
		rv := v.Ref.V
		w.RefVal = &rv
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode is GobEncode's inverse.
func (v *Value) GobDecode(data []byte) error {
	var w wireValue
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	*v = Value{
		Kind: w.Kind, B: w.B, S: w.S, Blob: w.Blob, I: w.I, F: w.F, U: stofunits.Units(w.U),
		Obj: w.Obj, Fn: w.Fn, Data: w.Data, SemVer: w.SemVer, Promise: w.Promise,
	}
	switch w.Kind {
	case KindList:
		l := append([]Value(nil), w.List...)
		v.List = &l
	case KindTuple:
		t := append([]Value(nil), w.Tup...)
		v.Tup = &t
	case KindSet:
		s := newOrderedSet()
		for _, item := range w.SetItems {
			s.Add(item)
		}
		v.Set = s
	case KindMap:
		m := newOMap()
		for i, k := range w.MapKeys {
			m.Set(k, w.MapVals[i])
		}
		v.Map = m
	}
	if w.HasRef && w.RefVal != nil {
		v.Ref = &Cell{V: *w.RefVal}
	}
	return nil
}
