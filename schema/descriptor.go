// Package schema provides class descriptors: the immutable metadata that maps
// an entity type to its relational shape (fields, identifier, relations,
// inheritance). Descriptors are built once, registered, and shared by every
// record instance of the type.
package schema

// FieldType classifies how a field's value is stored and encoded.
type FieldType int

const (
	// FieldPlain is a scalar stored as-is (string, number, time).
	FieldPlain FieldType = iota
	// FieldArray is an ordered structured value, flattened to bytes on write.
	FieldArray
	// FieldObject is a keyed structured value, flattened to bytes on write.
	FieldObject
	// FieldCompressedText is large text or blob data, compressed on write.
	FieldCompressedText
	// FieldBoolean is converted through the connection's boolean representation.
	FieldBoolean
	// FieldEnumerated is stored as the integer code of its enumerated value.
	FieldEnumerated
)

// String returns the schema-language keyword for the field type.
func (t FieldType) String() string {
	switch t {
	case FieldPlain:
		return "plain"
	case FieldArray:
		return "array"
	case FieldObject:
		return "object"
	case FieldCompressedText:
		return "clob"
	case FieldBoolean:
		return "boolean"
	case FieldEnumerated:
		return "enum"
	}
	return "unknown"
}

// RelationShape is the cardinality of a relation.
type RelationShape int

const (
	// OneToOne relates a record to at most one other record.
	OneToOne RelationShape = iota
	// OneToMany relates a record to a collection of records.
	OneToMany
	// ManyToMany relates records through an association table.
	ManyToMany
)

// String returns the schema-language keyword for the relation shape.
func (s RelationShape) String() string {
	switch s {
	case OneToOne:
		return "one-to-one"
	case OneToMany:
		return "one-to-many"
	case ManyToMany:
		return "many-to-many"
	}
	return "unknown"
}

// OwningSide indicates which side of a one-to-one relation holds the key.
type OwningSide int

const (
	// LocalSide means this record's local field holds the key.
	LocalSide OwningSide = iota
	// ForeignSide means the related record's foreign field holds the key.
	ForeignSide
)

// InheritanceKind is the inheritance mapping strategy for a class.
type InheritanceKind int

const (
	// InheritanceNone means the class maps to its own table without subtypes.
	InheritanceNone InheritanceKind = iota
	// InheritanceSingleTable stores the whole hierarchy in one table,
	// distinguished by a discriminator column.
	InheritanceSingleTable
	// InheritanceJoinedTable stores each subtype in its own joined table,
	// with the discriminator on the root.
	InheritanceJoinedTable
)

// FieldDescriptor contains metadata about a single persistent field.
type FieldDescriptor struct {
	// Name is the column/field name.
	Name string
	// Type classifies storage encoding for the field.
	Type FieldType
	// Identifier is true if the field is part of the primary identifier.
	Identifier bool
	// Enum lists the allowed values for FieldEnumerated fields, in code order.
	// The integer code of a value is its index in this slice.
	Enum []string
}

// RelationDescriptor contains metadata about a single association.
type RelationDescriptor struct {
	// Name is the relation alias used by accessors.
	Name string
	// Target is the type name of the related class.
	Target string
	// Shape is the relation cardinality.
	Shape RelationShape
	// Side indicates which side owns the key for one-to-one relations.
	Side OwningSide
	// Lazy is true if the relation is fetched on first access.
	Lazy bool
	// LocalField is the field on this class participating in the join.
	LocalField string
	// ForeignField is the field on the related class participating in the join.
	ForeignField string
}

// Accessor is a custom field accessor hook, resolved at class-build time.
// The argument is the record instance the access was made on (declared as
// any to avoid a dependency on the record package).
type Accessor func(rec any) (any, error)

// Mutator is a custom field mutator hook, resolved at class-build time.
type Mutator func(rec any, value any) error

// ClassDescriptor is the immutable schema metadata for one entity class.
// Build it with NewClassDescriptor and the Add/Set methods, then register it;
// descriptors must not be mutated after registration.
type ClassDescriptor struct {
	typeName   string
	fields     map[string]*FieldDescriptor
	fieldOrder []string
	identifier []string
	relations  map[string]*RelationDescriptor
	accessors  map[string]Accessor
	mutators   map[string]Mutator

	inheritance InheritanceKind
	discrColumn string
	discrMap    map[string]int64
}

// NewClassDescriptor creates an empty descriptor for the named type.
func NewClassDescriptor(typeName string) *ClassDescriptor {
	return &ClassDescriptor{
		typeName:  typeName,
		fields:    make(map[string]*FieldDescriptor),
		relations: make(map[string]*RelationDescriptor),
		accessors: make(map[string]Accessor),
		mutators:  make(map[string]Mutator),
	}
}

// TypeName returns the class name the descriptor was built for.
func (d *ClassDescriptor) TypeName() string { return d.typeName }

// AddField appends a field to the class. Identifier fields are appended to
// the identifier list in declaration order. Duplicate names return a
// DuplicateFieldError.
func (d *ClassDescriptor) AddField(f *FieldDescriptor) error {
	if _, ok := d.fields[f.Name]; ok {
		return &DuplicateFieldError{TypeName: d.typeName, Field: f.Name}
	}
	if _, ok := d.relations[f.Name]; ok {
		return &DuplicateFieldError{TypeName: d.typeName, Field: f.Name}
	}
	d.fields[f.Name] = f
	d.fieldOrder = append(d.fieldOrder, f.Name)
	if f.Identifier {
		d.identifier = append(d.identifier, f.Name)
	}
	return nil
}

// AddRelation appends a relation to the class. Duplicate names return a
// DuplicateFieldError.
func (d *ClassDescriptor) AddRelation(r *RelationDescriptor) error {
	if _, ok := d.relations[r.Name]; ok {
		return &DuplicateFieldError{TypeName: d.typeName, Field: r.Name}
	}
	if _, ok := d.fields[r.Name]; ok {
		return &DuplicateFieldError{TypeName: d.typeName, Field: r.Name}
	}
	d.relations[r.Name] = r
	return nil
}

// SetInheritance configures the inheritance mapping strategy, the
// discriminator column, and the type-name to discriminator-value map.
func (d *ClassDescriptor) SetInheritance(kind InheritanceKind, column string, discrMap map[string]int64) {
	d.inheritance = kind
	d.discrColumn = column
	d.discrMap = discrMap
}

// RegisterAccessor installs a custom accessor hook for a field or relation.
// The hook shadows the default get path entirely.
func (d *ClassDescriptor) RegisterAccessor(name string, fn Accessor) {
	d.accessors[name] = fn
}

// RegisterMutator installs a custom mutator hook for a field or relation.
// The hook shadows the default set path entirely.
func (d *ClassDescriptor) RegisterMutator(name string, fn Mutator) {
	d.mutators[name] = fn
}

// HasField reports whether the class declares the named persistent field.
func (d *ClassDescriptor) HasField(name string) bool {
	_, ok := d.fields[name]
	return ok
}

// HasRelation reports whether the class declares the named relation.
func (d *ClassDescriptor) HasRelation(name string) bool {
	_, ok := d.relations[name]
	return ok
}

// Field returns the descriptor for the named field.
func (d *ClassDescriptor) Field(name string) (*FieldDescriptor, bool) {
	f, ok := d.fields[name]
	return f, ok
}

// Relation returns the descriptor for the named relation.
func (d *ClassDescriptor) Relation(name string) (*RelationDescriptor, bool) {
	r, ok := d.relations[name]
	return r, ok
}

// FieldNames returns all declared field names in declaration order.
func (d *ClassDescriptor) FieldNames() []string {
	out := make([]string, len(d.fieldOrder))
	copy(out, d.fieldOrder)
	return out
}

// RelationNames returns all declared relation names.
func (d *ClassDescriptor) RelationNames() []string {
	out := make([]string, 0, len(d.relations))
	for name := range d.relations {
		out = append(out, name)
	}
	return out
}

// FieldType returns the storage classification of the named field.
// The second return is false if the field is not declared.
func (d *ClassDescriptor) FieldType(name string) (FieldType, bool) {
	f, ok := d.fields[name]
	if !ok {
		return FieldPlain, false
	}
	return f.Type, true
}

// IsIdentifierComposite reports whether the identifier spans multiple fields.
func (d *ClassDescriptor) IsIdentifierComposite() bool {
	return len(d.identifier) > 1
}

// IdentifierFieldNames returns the identifier field names in declaration order.
func (d *ClassDescriptor) IdentifierFieldNames() []string {
	out := make([]string, len(d.identifier))
	copy(out, d.identifier)
	return out
}

// IsIdentifierField reports whether the named field is part of the identifier.
func (d *ClassDescriptor) IsIdentifierField(name string) bool {
	for _, id := range d.identifier {
		if id == name {
			return true
		}
	}
	return false
}

// EnumCodeOf returns the integer code for an enumerated field value.
// The second return is false if the field is not enumerated or the value
// is not a member of its enumeration.
func (d *ClassDescriptor) EnumCodeOf(field string, value string) (int64, bool) {
	f, ok := d.fields[field]
	if !ok || f.Type != FieldEnumerated {
		return 0, false
	}
	for i, v := range f.Enum {
		if v == value {
			return int64(i), true
		}
	}
	return 0, false
}

// EnumValueOf returns the enumerated value for an integer code.
// The second return is false if the field is not enumerated or the code
// is out of range.
func (d *ClassDescriptor) EnumValueOf(field string, code int64) (string, bool) {
	f, ok := d.fields[field]
	if !ok || f.Type != FieldEnumerated {
		return "", false
	}
	if code < 0 || code >= int64(len(f.Enum)) {
		return "", false
	}
	return f.Enum[code], true
}

// Accessor returns the custom accessor hook for a name, if one is registered.
func (d *ClassDescriptor) Accessor(name string) (Accessor, bool) {
	fn, ok := d.accessors[name]
	return fn, ok
}

// Mutator returns the custom mutator hook for a name, if one is registered.
func (d *ClassDescriptor) Mutator(name string) (Mutator, bool) {
	fn, ok := d.mutators[name]
	return fn, ok
}

// InheritanceKind returns the inheritance mapping strategy for the class.
func (d *ClassDescriptor) InheritanceKind() InheritanceKind { return d.inheritance }

// DiscriminatorColumn returns the column holding the concrete-type
// discriminator value, or "" if the class has no inheritance mapping.
func (d *ClassDescriptor) DiscriminatorColumn() string { return d.discrColumn }

// DiscriminatorMap returns a copy of the type-name to discriminator-value map.
func (d *ClassDescriptor) DiscriminatorMap() map[string]int64 {
	out := make(map[string]int64, len(d.discrMap))
	for k, v := range d.discrMap {
		out[k] = v
	}
	return out
}

// DiscriminatorFor returns the discriminator value for a concrete type name.
func (d *ClassDescriptor) DiscriminatorFor(typeName string) (int64, bool) {
	v, ok := d.discrMap[typeName]
	return v, ok
}

// clone returns a deep copy of the descriptor under a new type name.
// Used by the parser to expand `sub` inheritance.
func (d *ClassDescriptor) clone(typeName string) *ClassDescriptor {
	c := NewClassDescriptor(typeName)
	for _, name := range d.fieldOrder {
		f := *d.fields[name]
		c.fields[name] = &f
		c.fieldOrder = append(c.fieldOrder, name)
	}
	c.identifier = append(c.identifier, d.identifier...)
	for name, r := range d.relations {
		rc := *r
		c.relations[name] = &rc
	}
	c.inheritance = d.inheritance
	c.discrColumn = d.discrColumn
	if d.discrMap != nil {
		c.discrMap = make(map[string]int64, len(d.discrMap))
		for k, v := range d.discrMap {
			c.discrMap[k] = v
		}
	}
	return c
}
