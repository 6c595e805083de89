package record

import (
	"sync"
	"sync/atomic"

	"github.com/CaliLuke/go-record/schema"
)

// RelationLoader fetches the value of a lazily-loaded relation: a *Record, a
// *Collection, or nil. The loader may block on network or database I/O; that
// suspension propagates synchronously through Record.Value.
type RelationLoader func(rec *Record, relationName string) (any, error)

// Manager is the persistence manager owning a set of records. It resolves
// class descriptors, assigns process-unique object ids, stages hydration
// data consumed at construction, tracks managed records for detachment, and
// delegates lazy relation loads to a pluggable loader.
//
// Manager methods are safe for concurrent use; the records it hands out are
// not (see Record).
type Manager struct {
	registry *schema.Registry
	oid      atomic.Uint64

	mu      sync.Mutex
	staged  map[string]map[string]any
	tracked map[uint64]*Record
	loader  RelationLoader
}

// NewManager creates a manager resolving descriptors from the given registry.
func NewManager(registry *schema.Registry) *Manager {
	return &Manager{
		registry: registry,
		staged:   make(map[string]map[string]any),
		tracked:  make(map[uint64]*Record),
	}
}

// SetRelationLoader installs the lazy-load hook. Without a loader, lazy
// relation access resolves to nil.
func (m *Manager) SetRelationLoader(fn RelationLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loader = fn
}

// nextOid returns the next process-unique object id.
func (m *Manager) nextOid() uint64 {
	return m.oid.Add(1)
}

// Descriptor resolves the class descriptor for a type name.
func (m *Manager) Descriptor(typeName string) (*schema.ClassDescriptor, error) {
	desc, ok := m.registry.Lookup(typeName)
	if !ok {
		return nil, &schema.NotRegisteredError{TypeName: typeName}
	}
	return desc, nil
}

// StageHydration stores pre-fetched raw data for a type. The next NewRecord
// call for that type consumes it: the record is hydrated, its identifier
// extracted, and it starts managed instead of new.
func (m *Manager) StageHydration(typeName string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged[typeName] = data
}

// takeStaged consumes staged hydration data for a type, exactly once.
func (m *Manager) takeStaged(typeName string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.staged[typeName]
	if !ok {
		return nil
	}
	delete(m.staged, typeName)
	return data
}

// NewRecord constructs a record of the named type. This is the only entry
// point for creating records.
func (m *Manager) NewRecord(typeName string) (*Record, error) {
	desc, err := m.Descriptor(typeName)
	if err != nil {
		return nil, err
	}

	r := newRecord(m, desc, m.takeStaged(typeName))
	m.track(r)
	return r, nil
}

// track remembers a managed record so it can later be detached.
func (m *Manager) track(r *Record) {
	if r.state != StateManaged {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked[r.oid] = r
}

// Detach stops tracking a record. Its identity remains, but the manager no
// longer owns its synchronization.
func (m *Manager) Detach(r *Record) {
	m.mu.Lock()
	delete(m.tracked, r.oid)
	m.mu.Unlock()

	r.state = StateDetached
}

// Tracked reports whether the manager currently tracks the record.
func (m *Manager) Tracked(r *Record) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tracked[r.oid]
	return ok
}

// LoadRelation resolves a lazily-loaded relation through the installed
// loader. Without a loader the relation resolves to nil.
func (m *Manager) LoadRelation(r *Record, relationName string) (any, error) {
	m.mu.Lock()
	loader := m.loader
	m.mu.Unlock()

	if loader == nil {
		return nil, nil
	}
	return loader(r, relationName)
}
