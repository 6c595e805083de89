package record

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/CaliLuke/go-record/schema"
)

// snapshot is the wire form of a record. References and the manager are
// excluded: both link into live object graphs that do not survive a
// round trip. The oid is carried as a placeholder only; deserialization
// always assigns a fresh one.
type snapshot struct {
	TypeName string         `msgpack:"type"`
	State    State          `msgpack:"state"`
	Oid      uint64         `msgpack:"oid"`
	Fields   map[string]any `msgpack:"fields"`
	Identity map[string]any `msgpack:"identity"`
}

// ToBytes flattens the record to a binary snapshot. Identifier values are
// folded into the field set first so they survive even when held only in
// the identity. A record value stored in a non-object column is dropped (a
// stale denormalized link is not reliable to restore), and loaded-null
// fields are dropped (absence reconstructs as not-loaded). Remaining values
// get their storage encoding applied, except boolean conversion, which
// needs a connection and is left to write time.
func (r *Record) ToBytes() ([]byte, error) {
	merged := make(map[string]Value, len(r.fields)+len(r.identity))
	for name, v := range r.fields {
		merged[name] = v
	}
	for name, v := range r.identity {
		if v == nil {
			continue
		}
		if _, ok := merged[name]; !ok {
			merged[name] = Of(v)
		}
	}

	fields := make(map[string]any, len(merged))
	for name, v := range merged {
		if v.Null {
			continue
		}
		if _, isRecord := v.V.(*Record); isRecord {
			if ft, _ := r.desc.FieldType(name); ft != schema.FieldObject {
				continue
			}
		}
		enc, err := r.encodeField(name, v.V, nil)
		if err != nil {
			return nil, err
		}
		fields[name] = enc
	}

	snap := snapshot{
		TypeName: r.desc.TypeName(),
		State:    r.state,
		Oid:      r.oid,
		Fields:   fields,
		Identity: r.Identity(),
	}

	return msgpack.Marshal(&snap)
}

// RecordFromBytes reconstructs a record from a binary snapshot produced by
// ToBytes. The restored record gets a fresh oid, re-resolves its class
// descriptor from the manager's registry, reverses the per-field storage
// encoding, and re-runs identifier extraction over the restored fields, so
// a snapshot taken from a managed record comes back managed with the same
// identity.
func (m *Manager) RecordFromBytes(data []byte) (*Record, error) {
	var snap snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, err
	}

	desc, err := m.Descriptor(snap.TypeName)
	if err != nil {
		return nil, err
	}

	if !snap.State.valid() {
		return nil, &InvalidStateError{State: snap.State}
	}

	r := &Record{
		oid:        m.nextOid(),
		state:      snap.State,
		desc:       desc,
		mgr:        m,
		identity:   make(map[string]any),
		fields:     make(map[string]Value, len(snap.Fields)),
		references: make(map[string]Value),
		dirty:      make(map[string]Change),
	}

	extract := make(map[string]any, len(snap.Fields)+len(snap.Identity))
	for name, raw := range snap.Fields {
		v, err := decodeField(desc, name, raw)
		if err != nil {
			return nil, err
		}
		r.fields[name] = Of(v)
		extract[name] = v
	}
	for name, v := range snap.Identity {
		if _, ok := extract[name]; !ok {
			extract[name] = v
		}
	}

	r.extractIdentifier(extract)

	m.track(r)
	return r, nil
}
