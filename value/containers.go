package value

// orderedSet and omap back KindSet/KindMap. Both preserve insertion order
// (spec §4.9's canonical tree walk and §4.6's for-in rely on stable order),
// keyed by each Value's String() form since Value itself isn't comparable
// (it embeds slice/pointer fields).

type orderedSet struct {
	order []Value
	index map[string]int
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]int)}
}

func (s *orderedSet) Len() int { return len(s.order) }

func (s *orderedSet) Items() []Value { return s.order }

func (s *orderedSet) Has(v Value) bool {
	_, ok := s.index[v.String()+"|"+v.Kind.String()]
	return ok
}

func (s *orderedSet) Add(v Value) bool {
	key := v.String() + "|" + v.Kind.String()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.order)
	s.order = append(s.order, v)
	return true
}

func (s *orderedSet) Remove(v Value) bool {
	key := v.String() + "|" + v.Kind.String()
	i, ok := s.index[key]
	if !ok {
		return false
	}
	s.order = append(s.order[:i], s.order[i+1:]...)
	delete(s.index, key)
	for k, idx := range s.index {
		if idx > i {
			s.index[k] = idx - 1
		}
	}
	return true
}

func (s *orderedSet) Clone() *orderedSet {
	clone := newOrderedSet()
	for _, v := range s.order {
		clone.Add(v)
	}
	return clone
}

type mapEntry struct {
	key Value
	val Value
}

type omap struct {
	order []string
	byKey map[string]*mapEntry
}

func newOMap() *omap {
	return &omap{byKey: make(map[string]*mapEntry)}
}

func (m *omap) Len() int { return len(m.order) }

func keyOf(k Value) string { return k.Kind.String() + ":" + k.String() }

func (m *omap) Get(k Value) (Value, bool) {
	e, ok := m.byKey[keyOf(k)]
	if !ok {
		return Value{}, false
	}
	return e.val, true
}

func (m *omap) Set(k, v Value) {
	key := keyOf(k)
	if e, ok := m.byKey[key]; ok {
		e.val = v
		return
	}
	m.byKey[key] = &mapEntry{key: k, val: v}
	m.order = append(m.order, key)
}

func (m *omap) Delete(k Value) bool {
	key := keyOf(k)
	if _, ok := m.byKey[key]; !ok {
		return false
	}
	delete(m.byKey, key)
	for i, ok := range m.order {
		if ok == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

func (m *omap) Keys() []Value {
	out := make([]Value, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.byKey[key].key)
	}
	return out
}

func (m *omap) Clone() *omap {
	clone := newOMap()
	for _, key := range m.order {
		e := m.byKey[key]
		clone.Set(e.key, e.val)
	}
	return clone
}

// Container accessors exposed on Value for library implementations.

func (v Value) ListItems() []Value {
	if v.Kind != KindList || v.List == nil {
		return nil
	}
	return *v.List
}

func (v Value) SetRef() *orderedSet { return v.Set }
func (v Value) MapRef() *omap       { return v.Map }

func (v Value) Clone() Value {
	switch v.Kind {
	case KindList:
		items := append([]Value(nil), *v.List...)
		return Value{Kind: KindList, List: &items}
	case KindTuple:
		items := append([]Value(nil), *v.Tup...)
		return Value{Kind: KindTuple, Tup: &items}
	case KindSet:
		return Value{Kind: KindSet, Set: v.Set.Clone()}
	case KindMap:
		return Value{Kind: KindMap, Map: v.Map.Clone()}
	case KindSemVer:
		sv := *v.SemVer
		return Value{Kind: KindSemVer, SemVer: &sv}
	case KindRef:
		return Value{Kind: KindRef, Ref: &Cell{V: v.Ref.V.Clone()}}
	default:
		return v
	}
}
