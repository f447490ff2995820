package study

// Descriptor holds the reporting attributes of a variable.
type Descriptor struct {
	Tissue   Tissue
	Unit     Unit
	ShortKey string
}

// DescriptorIndex maps variable keys to their reporting attributes
// for result enrichment.  The first occurrence of a key in the source
// rows wins; LoadResponses has already checked that the attributes of
// a short key do not vary.
type DescriptorIndex struct {
	byKey   map[string]Descriptor
	byShort map[string]Descriptor
}

// NewDescriptorIndex builds a descriptor index over the response
// rows.
func NewDescriptorIndex(rows []Measurement) *DescriptorIndex {

	ix := &DescriptorIndex{
		byKey:   make(map[string]Descriptor),
		byShort: make(map[string]Descriptor),
	}

	for _, r := range rows {
		d := Descriptor{Tissue: r.Tissue, Unit: r.Unit, ShortKey: r.ShortKey}
		if _, ok := ix.byKey[r.Key]; !ok {
			ix.byKey[r.Key] = d
		}
		if _, ok := ix.byShort[r.ShortKey]; !ok {
			ix.byShort[r.ShortKey] = d
		}
	}

	return ix
}

// Lookup returns the descriptor of a variable key.  Full keys are
// tried first, then short keys, so results identified either way can
// be enriched.  The second return value is false when the key is not
// covered by the index; callers leave such rows unenriched.
func (ix *DescriptorIndex) Lookup(key string) (Descriptor, bool) {

	if d, ok := ix.byKey[key]; ok {
		return d, true
	}
	d, ok := ix.byShort[key]

	return d, ok
}
