package record

import (
	"github.com/CaliLuke/go-record/schema"
)

// setReference assigns an association value according to the relation's
// declared shape. Note the documented side effects: assigning the inverse
// side of a one-to-one relation writes the foreign field on the related
// record, and assigning the owning side writes the local field on this one.
func (r *Record) setReference(name string, value any) error {
	rel, ok := r.desc.Relation(name)
	if !ok {
		return &InvalidFieldError{TypeName: r.desc.TypeName(), Field: name}
	}

	if value == nil {
		r.references[name] = NullValue()
		return nil
	}

	switch rel.Shape {
	case schema.OneToMany:
		coll, ok := value.(*Collection)
		if !ok {
			return &InvalidReferenceError{TypeName: r.desc.TypeName(), Relation: name, Shape: rel.Shape}
		}
		// Merge into an already-cached collection in place, preserving the
		// identity of the existing container for anyone holding it.
		if existing, loaded := r.references[name]; loaded && !existing.Null {
			if cached, isColl := existing.V.(*Collection); isColl {
				cached.Merge(coll)
				return nil
			}
		}
		r.references[name] = Of(coll)
		return nil

	case schema.ManyToMany:
		coll, ok := value.(*Collection)
		if !ok {
			return &InvalidReferenceError{TypeName: r.desc.TypeName(), Relation: name, Shape: rel.Shape}
		}
		r.references[name] = Of(coll)
		return nil

	default: // schema.OneToOne
		related, ok := value.(*Record)
		if !ok {
			return &InvalidReferenceError{TypeName: r.desc.TypeName(), Relation: name, Shape: rel.Shape}
		}

		if rel.Side == schema.LocalSide {
			if rel.ForeignField != "" && !related.desc.IsIdentifierField(rel.ForeignField) {
				// Denormalized foreign key: copy the related record's
				// foreign-field value into the local field.
				fv, err := related.field(rel.ForeignField)
				if err != nil {
					return err
				}
				r.setField(rel.LocalField, fv)
			} else {
				// Object-valued foreign key, resolved at save time.
				r.setField(rel.LocalField, related)
			}
		} else {
			// Inverse side: point the related record's foreign field back
			// at this record.
			related.setField(rel.ForeignField, r)
		}

		r.references[name] = Of(related)
		return nil
	}
}

// HasReference reports whether the named reference has been loaded or set.
func (r *Record) HasReference(name string) bool {
	_, ok := r.references[name]
	return ok
}

// Reference returns a loaded reference: a *Record, a *Collection, or nil for
// the null variant. A reference that was never loaded or set fails with
// UnknownReferenceError.
func (r *Record) Reference(name string) (any, error) {
	v, ok := r.references[name]
	if !ok {
		return nil, &UnknownReferenceError{TypeName: r.desc.TypeName(), Name: name}
	}
	return v.Get(), nil
}

// References returns the loaded references keyed by relation alias. Null
// variants appear as nil values.
func (r *Record) References() map[string]any {
	out := make(map[string]any, len(r.references))
	for name, v := range r.references {
		out[name] = v.Get()
	}
	return out
}

// SetRelatedCollection caches a collection under a relation alias without
// shape handling. It is used by the persistence layer when populating
// to-many references wholesale.
func (r *Record) SetRelatedCollection(alias string, coll *Collection) {
	r.references[alias] = Of(coll)
}
