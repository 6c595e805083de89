package record

import (
	"github.com/CaliLuke/go-record/schema"
)

// BuildWritePayload derives a write-ready payload from the dirty field set.
// Each dirty field is emitted under its name with the declared storage
// encoding applied: structured values are flattened to bytes, compressed
// text is gzipped, booleans go through the connection's representation,
// enumerated values become their integer code, everything else passes
// through. A loaded-null field emits nil.
//
// If the class maps an inheritance hierarchy, the discriminator value for
// the record's concrete type is injected into both the payload and the live
// field store whenever it differs from (or was unset relative to) the stored
// value.
//
// The dirty set is not cleared here; clearing happens only through
// AssignIdentifier.
func (r *Record) BuildWritePayload(conv BooleanConverter) (map[string]any, error) {
	payload := make(map[string]any, len(r.dirty)+1)

	for name := range r.dirty {
		v, loaded := r.fields[name]
		if !loaded || v.Null {
			payload[name] = nil
			continue
		}
		enc, err := r.encodeField(name, v.V, conv)
		if err != nil {
			return nil, err
		}
		payload[name] = enc
	}

	if r.desc.InheritanceKind() != schema.InheritanceNone {
		r.injectDiscriminator(payload)
	}

	return payload, nil
}

// injectDiscriminator writes the concrete type's discriminator value into
// the payload and the field store when the stored value is missing or stale.
func (r *Record) injectDiscriminator(payload map[string]any) {
	col := r.desc.DiscriminatorColumn()
	if col == "" {
		return
	}
	want, ok := r.desc.DiscriminatorFor(r.desc.TypeName())
	if !ok {
		return
	}

	cur, loaded := r.fields[col]
	if loaded && !cur.Null && looselyEqual(cur.V, want) {
		return
	}

	payload[col] = want
	r.fields[col] = Of(want)
}
