package intent

// FilterEquals reports whether a and b agree on action, data, type, package,
// component and categories. A field must be absent in both or present and equal
// in both. Extras, flags, selector and source bounds are ignored.
func FilterEquals(a, b *Descriptor) bool {
	if a == nil || b == nil {
		return a == b
	}
	return ptrEqual(a.action, b.action) &&
		ptrEqual(a.data, b.data) &&
		ptrEqual(a.mimeType, b.mimeType) &&
		ptrEqual(a.pkg, b.pkg) &&
		ptrEqual(a.component, b.component) &&
		categoriesEqual(a.categories, b.categories)
}

// FilterHashCode sums the hashes of the fields FilterEquals compares, skipping
// absent ones. Filter-equal descriptors always hash alike.
func FilterHashCode(d *Descriptor) uint32 {
	if d == nil {
		return 0
	}
	var code uint32
	if d.action != nil {
		code += stringHash(*d.action)
	}
	if d.data != nil {
		code += d.data.hash()
	}
	if d.mimeType != nil {
		code += stringHash(*d.mimeType)
	}
	if d.pkg != nil {
		code += stringHash(*d.pkg)
	}
	if d.component != nil {
		code += d.component.hash()
	}
	// Set hash: sum of element hashes, independent of order.
	for c := range d.categories {
		code += stringHash(c)
	}
	return code
}

// FilterEquals is the method form of the package-level FilterEquals.
func (d *Descriptor) FilterEquals(o *Descriptor) bool { return FilterEquals(d, o) }

// FilterHashCode is the method form of the package-level FilterHashCode.
func (d *Descriptor) FilterHashCode() uint32 { return FilterHashCode(d) }

func categoriesEqual(a, b map[string]struct{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if len(a) != len(b) {
		return false
	}
	for c := range a {
		if _, ok := b[c]; !ok {
			return false
		}
	}
	return true
}

// FilterKey pairs a descriptor with its precomputed filter hash so it can act
// as a key under filter equivalence. The key owns a filter-only copy of the
// descriptor; later changes to the original do not affect it.
type FilterKey struct {
	d    *Descriptor
	hash uint32
}

// NewFilterKey snapshots d.
func NewFilterKey(d *Descriptor) FilterKey {
	c := d.CloneFilter()
	return FilterKey{d: c, hash: FilterHashCode(c)}
}

// Descriptor returns a copy of the snapshot.
func (k FilterKey) Descriptor() *Descriptor { return k.d.CloneFilter() }

// Hash returns the precomputed filter hash.
func (k FilterKey) Hash() uint32 { return k.hash }

// Equal delegates to FilterEquals.
func (k FilterKey) Equal(o FilterKey) bool {
	return k.hash == o.hash && FilterEquals(k.d, o.d)
}

// FilterSet is a set of descriptors deduplicated by filter equivalence.
// The zero value is an empty set. Not safe for concurrent use.
type FilterSet struct {
	buckets map[uint32][]FilterKey
	n       int
}

// Add inserts d and reports whether it was not already present.
func (s *FilterSet) Add(d *Descriptor) bool {
	k := NewFilterKey(d)
	if s.buckets == nil {
		s.buckets = map[uint32][]FilterKey{}
	}
	for _, e := range s.buckets[k.hash] {
		if e.Equal(k) {
			return false
		}
	}
	s.buckets[k.hash] = append(s.buckets[k.hash], k)
	s.n++
	return true
}

// Contains reports whether a filter-equal descriptor is in the set.
func (s *FilterSet) Contains(d *Descriptor) bool {
	h := FilterHashCode(d)
	for _, e := range s.buckets[h] {
		if FilterEquals(e.d, d) {
			return true
		}
	}
	return false
}

// Remove deletes the filter-equal descriptor and reports whether one was present.
func (s *FilterSet) Remove(d *Descriptor) bool {
	h := FilterHashCode(d)
	b := s.buckets[h]
	for i, e := range b {
		if FilterEquals(e.d, d) {
			b = append(b[:i], b[i+1:]...)
			if len(b) == 0 {
				delete(s.buckets, h)
			} else {
				s.buckets[h] = b
			}
			s.n--
			return true
		}
	}
	return false
}

// Len returns the number of distinct descriptors.
func (s *FilterSet) Len() int { return s.n }

// Keys returns the members in no particular order.
func (s *FilterSet) Keys() []FilterKey {
	out := make([]FilterKey, 0, s.n)
	for _, b := range s.buckets {
		out = append(out, b...)
	}
	return out
}
