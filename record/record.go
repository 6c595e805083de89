package record

import (
	"github.com/CaliLuke/go-record/schema"
)

// Change is the (old, new) value pair recorded for a dirty field.
type Change struct {
	Old any
	New any
}

// Record is an in-memory entity mirrored in a relational store. It tracks
// lifecycle state, holds loaded fields and association references, records
// the changeset needed for an incremental write, and round-trips through a
// binary snapshot.
//
// A record is not internally synchronized: at most one logical owner may
// manipulate a given instance at a time. Concurrent mutation must be
// serialized by the caller, typically the manager's unit of work.
type Record struct {
	oid   uint64
	state State
	desc  *schema.ClassDescriptor
	mgr   *Manager

	identity   map[string]any
	fields     map[string]Value
	references map[string]Value
	dirty      map[string]Change
}

// newRecord builds a record for the given descriptor. If staged hydration
// data is present it is consumed: fields are populated, the identifier is
// extracted, and the record starts managed; otherwise the record starts new.
func newRecord(mgr *Manager, desc *schema.ClassDescriptor, staged map[string]any) *Record {
	r := &Record{
		oid:        mgr.nextOid(),
		state:      StateNew,
		desc:       desc,
		mgr:        mgr,
		identity:   make(map[string]any),
		fields:     make(map[string]Value),
		references: make(map[string]Value),
		dirty:      make(map[string]Change),
	}

	if staged != nil {
		for name, v := range staged {
			if desc.HasField(name) {
				r.fields[name] = Of(v)
			}
		}
		r.extractIdentifier(staged)
		r.state = StateManaged
	}

	return r
}

// Oid returns the process-unique object id assigned at construction. It is
// monotonically increasing, immutable, and carries no persistent meaning.
func (r *Record) Oid() uint64 { return r.oid }

// Descriptor returns the shared class metadata for the record's type.
func (r *Record) Descriptor() *schema.ClassDescriptor { return r.desc }

// Manager returns the persistence manager owning this record.
func (r *Record) Manager() *Manager { return r.mgr }

// State returns the current lifecycle state.
func (r *Record) State() State { return r.state }

// SetState transitions the record to a new lifecycle state. An unrecognized
// state value fails with InvalidStateError. SetState performs no transition
// validation beyond membership; orchestrating legal transitions is the
// manager's job.
func (r *Record) SetState(s State) error {
	if !s.valid() {
		return &InvalidStateError{State: s}
	}
	r.state = s
	return nil
}

// IsNew reports whether the record is in the new state.
func (r *Record) IsNew() bool { return r.state == StateNew }

// IsModified reports whether any field has been modified since the last
// synchronization point.
func (r *Record) IsModified() bool { return len(r.dirty) > 0 }

// Identity returns a copy of the identifier field values. While the record
// is new the map may be incomplete or empty. Composite identifiers reserve
// a slot (with a nil value) for every identifier field; a single-field
// identifier is simply absent until known.
func (r *Record) Identity() map[string]any {
	out := make(map[string]any, len(r.identity))
	for k, v := range r.identity {
		out[k] = v
	}
	return out
}

// extractIdentifier copies identifier field values from data into the
// identity map. For composite keys every identifier field gets a slot, with
// nil standing in for unset values. For a single-field key an unset value
// leaves the identity empty: absence signals "not yet known".
func (r *Record) extractIdentifier(data map[string]any) {
	names := r.desc.IdentifierFieldNames()
	if len(names) == 0 {
		return
	}

	if r.desc.IsIdentifierComposite() {
		for _, name := range names {
			v, ok := data[name]
			if !ok || v == nil {
				r.identity[name] = nil
			} else {
				r.identity[name] = v
			}
		}
		return
	}

	name := names[0]
	if v, ok := data[name]; ok && v != nil {
		r.identity[name] = v
	}
}

// AssignIdentifier sets the record's identifier, conceptually post-insert.
// For a single-column key pass the value directly; for a composite key pass
// a map from identifier field name to value. The values are written to both
// the identity and the field store, the dirty set is cleared wholesale (an
// assigned identifier marks the record as synchronized), and a new record
// transitions to managed.
func (r *Record) AssignIdentifier(id any) error {
	names := r.desc.IdentifierFieldNames()
	if len(names) == 0 {
		return &InvalidFieldError{TypeName: r.desc.TypeName(), Field: "(identifier)"}
	}

	if composite, ok := id.(map[string]any); ok {
		for name, v := range composite {
			if !r.desc.IsIdentifierField(name) {
				return &InvalidFieldError{TypeName: r.desc.TypeName(), Field: name}
			}
			r.identity[name] = v
			r.fields[name] = Of(v)
		}
	} else {
		if r.desc.IsIdentifierComposite() {
			return &InvalidFieldError{TypeName: r.desc.TypeName(), Field: "(composite identifier)"}
		}
		r.identity[names[0]] = id
		r.fields[names[0]] = Of(id)
	}

	r.dirty = make(map[string]Change)
	if r.state == StateNew {
		r.state = StateManaged
		r.mgr.track(r)
	}
	return nil
}

// field is the internal unchecked accessor: it returns the loaded value for
// a field or reference without triggering any lazy load. A name that is
// neither loaded fails with UnknownFieldError.
func (r *Record) field(name string) (any, error) {
	if v, ok := r.fields[name]; ok {
		return v.Get(), nil
	}
	if v, ok := r.references[name]; ok {
		return v.Get(), nil
	}
	return nil, &UnknownFieldError{TypeName: r.desc.TypeName(), Field: name}
}

// Value returns the current value of a field or reference. A custom accessor
// hook, if registered for the name, shadows the default path. Unloaded
// fields return nil (fields are never lazily fetched; they must be present
// from construction). An unloaded relation configured for lazy loading is
// fetched through the manager and cached; a non-lazy unloaded relation
// returns nil. A name the class does not declare fails with
// InvalidFieldError.
func (r *Record) Value(name string) (any, error) {
	if acc, ok := r.desc.Accessor(name); ok {
		return acc(r)
	}

	if v, ok := r.fields[name]; ok {
		return v.Get(), nil
	}
	if v, ok := r.references[name]; ok {
		return v.Get(), nil
	}

	if r.desc.HasField(name) {
		return nil, nil
	}

	if rel, ok := r.desc.Relation(name); ok {
		if !rel.Lazy {
			return nil, nil
		}
		loaded, err := r.mgr.LoadRelation(r, name)
		if err != nil {
			return nil, err
		}
		r.references[name] = Of(loaded)
		return loaded, nil
	}

	return nil, &InvalidFieldError{TypeName: r.desc.TypeName(), Field: name}
}

// SetValue sets the value of a field or reference. A custom mutator hook, if
// registered for the name, shadows the default path. Field assignment uses
// loose equality to suppress no-op sets (see looselyEqual); a real change is
// recorded in the dirty set and, while the record is new, identifier fields
// are mirrored into the identity. Relation names delegate to reference
// assignment. A name the class does not declare fails with
// InvalidFieldError.
func (r *Record) SetValue(name string, value any) error {
	if mut, ok := r.desc.Mutator(name); ok {
		return mut(r, value)
	}

	if r.desc.HasField(name) {
		r.setField(name, value)
		return nil
	}

	if r.desc.HasRelation(name) {
		return r.setReference(name, value)
	}

	return &InvalidFieldError{TypeName: r.desc.TypeName(), Field: name}
}

// setField updates a field value and records the change. A value loosely
// equal to the current one is dropped without dirtying the record.
func (r *Record) setField(name string, value any) {
	old := r.fields[name].Get() // zero Value for unloaded fields reads as nil

	if looselyEqual(old, value) {
		return
	}

	r.fields[name] = Of(value)
	r.dirty[name] = Change{Old: old, New: value}

	if r.IsNew() && r.desc.IsIdentifierField(name) {
		r.identity[name] = value
	}
}

// DirtyFields returns a copy of the changeset recorded since the last
// synchronization point, keyed by field name.
func (r *Record) DirtyFields() map[string]Change {
	out := make(map[string]Change, len(r.dirty))
	for k, v := range r.dirty {
		out[k] = v
	}
	return out
}

// Contains reports whether the name is a loaded field with a non-null value,
// a set identifier field, or a loaded reference with a non-null value. It
// never triggers a load.
func (r *Record) Contains(name string) bool {
	if v, ok := r.fields[name]; ok && !v.Null {
		return true
	}
	if v, ok := r.identity[name]; ok && v != nil {
		return true
	}
	if v, ok := r.references[name]; ok && !v.Null {
		return true
	}
	return false
}

// Remove clears the named slot. A loaded field is reset to an empty
// structured value rather than null. A loaded to-one reference is replaced
// with the null variant; the actual deletion is deferred to save time. A
// loaded collection is cleared in place. An unloaded name fails with
// UnknownFieldError.
func (r *Record) Remove(name string) error {
	if _, ok := r.fields[name]; ok {
		r.fields[name] = Of([]any{})
		return nil
	}

	if v, ok := r.references[name]; ok {
		if coll, isColl := v.V.(*Collection); isColl && !v.Null {
			coll.Clear()
			return nil
		}
		r.references[name] = NullValue()
		return nil
	}

	return &UnknownFieldError{TypeName: r.desc.TypeName(), Field: name}
}

// Free invalidates the record: fields, identity, references, and the
// changeset are cleared. With deep set, records held in references are freed
// recursively (cycles are detected by oid). The record must not be used
// after Free.
func (r *Record) Free(deep bool) {
	r.freeWith(deep, map[uint64]bool{r.oid: true})
}

func (r *Record) freeWith(deep bool, visited map[uint64]bool) {
	if deep {
		for _, v := range r.references {
			switch t := v.V.(type) {
			case *Record:
				if !visited[t.oid] {
					visited[t.oid] = true
					t.freeWith(true, visited)
				}
			case *Collection:
				for _, rec := range t.records {
					if !visited[rec.oid] {
						visited[rec.oid] = true
						rec.freeWith(true, visited)
					}
				}
			}
		}
	}

	r.fields = make(map[string]Value)
	r.identity = make(map[string]any)
	r.references = make(map[string]Value)
	r.dirty = make(map[string]Change)
}
