package record

// Collection is an ordered container of records used for to-many references.
// The container object itself carries identity: when a to-many reference is
// re-assigned, new contents are merged into the existing collection in place
// so that callers holding the collection keep seeing current data.
type Collection struct {
	records []*Record
}

// NewCollection creates a collection holding the given records.
func NewCollection(records ...*Record) *Collection {
	c := &Collection{}
	c.records = append(c.records, records...)
	return c
}

// Add appends a record to the collection.
func (c *Collection) Add(r *Record) {
	c.records = append(c.records, r)
}

// Merge appends every record from other that is not already present,
// compared by oid. The receiver is modified in place.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}
	seen := make(map[uint64]bool, len(c.records))
	for _, r := range c.records {
		seen[r.Oid()] = true
	}
	for _, r := range other.records {
		if !seen[r.Oid()] {
			c.records = append(c.records, r)
			seen[r.Oid()] = true
		}
	}
}

// Clear removes all records from the collection in place.
func (c *Collection) Clear() {
	c.records = c.records[:0]
}

// Len returns the number of records in the collection.
func (c *Collection) Len() int {
	return len(c.records)
}

// At returns the record at index i.
func (c *Collection) At(i int) *Record {
	return c.records[i]
}

// Records returns a copy of the collection's contents.
func (c *Collection) Records() []*Record {
	out := make([]*Record, len(c.records))
	copy(out, c.records)
	return out
}
