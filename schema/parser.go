package schema

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// --- Participle grammar structs ---
// These define the class schema grammar using struct tags. The grammar
// handles field, relation, and discriminator clauses inside class blocks.

// schemaFile is the top-level grammar: a sequence of class definitions.
type schemaFile struct {
	Classes []*classDef `parser:"@@*"`
}

// classDef parses: class name [sub parent] ( member [, member]* [,] ) ;
type classDef struct {
	Name    string       `parser:"'class' @Ident"`
	Parent  string       `parser:"('sub' @Ident)?"`
	Members []*memberDef `parser:"'(' @@ (',' @@)* ','? ')' ';'"`
}

// memberDef is one of: field, relation, or discriminator clause.
type memberDef struct {
	Field         *fieldDef         `parser:"  @@"`
	Relation      *relationDef      `parser:"| @@"`
	Discriminator *discriminatorDef `parser:"| @@"`
}

// fieldDef parses: field name type [@id]
// where type is a storage keyword or an enum("a", "b", ...) list.
type fieldDef struct {
	Name string   `parser:"'field' @Ident"`
	Type string   `parser:"( @('string'|'integer'|'float'|'array'|'object'|'clob'|'boolean')"`
	Enum *enumDef `parser:"| @@ )"`
	ID   bool     `parser:"@'@id'?"`
}

// enumDef parses: enum("value" [, "value"]*)
type enumDef struct {
	Values []string `parser:"'enum' '(' @String (',' @String)* ')'"`
}

// relationDef parses:
//
//	relation name shape target [@lazy] [@owning(local|foreign)]
//	    [local(field)] [foreign(field)]
type relationDef struct {
	Name    string `parser:"'relation' @Ident"`
	Shape   string `parser:"@('one-to-one'|'one-to-many'|'many-to-many')"`
	Target  string `parser:"@Ident"`
	Lazy    bool   `parser:"@'@lazy'?"`
	Owning  string `parser:"('@owning' '(' @('local'|'foreign') ')')?"`
	Local   string `parser:"('local' '(' @Ident ')')?"`
	Foreign string `parser:"('foreign' '(' @Ident ')')?"`
}

// discriminatorDef parses:
//
//	discriminator column single-table|joined-table map(type = code, ...)
type discriminatorDef struct {
	Column  string       `parser:"'discriminator' @Ident"`
	Kind    string       `parser:"@('single-table'|'joined-table')"`
	Entries []*discEntry `parser:"'map' '(' @@ (',' @@)* ')'"`
}

// discEntry parses: type-name = integer-code
type discEntry struct {
	TypeName string `parser:"@Ident '='"`
	Value    int64  `parser:"@Int"`
}

var schemaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s]+`},
	{Name: "Keyword", Pattern: `\b(class|sub|field|relation|discriminator|local|foreign|map|enum|string|integer|float|array|object|clob|boolean|one-to-one|one-to-many|many-to-many|single-table|joined-table)\b`},
	{Name: "AnnotKW", Pattern: `@(id|lazy|owning)`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_-]*`},
	{Name: "Punct", Pattern: `[;,()=]`},
})

// --- Parser construction and entry points ---

// Parse parses a class schema string into class descriptors, in declaration
// order. A class may extend an earlier class with `sub`, inheriting its
// fields, relations, and discriminator settings.
func Parse(input string) ([]*ClassDescriptor, error) {
	parser, err := participle.Build[schemaFile](
		participle.Lexer(schemaLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("build parser: %w", err)
	}

	file, err := parser.ParseString("schema", input)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	return convertClasses(file)
}

// ParseFile reads a class schema from the specified file path and parses it.
func ParseFile(path string) ([]*ClassDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(string(data))
}

// ParseInto parses a class schema and registers every resulting descriptor.
func ParseInto(reg *Registry, input string) error {
	descs, err := Parse(input)
	if err != nil {
		return err
	}
	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// convertClasses converts the participle AST to class descriptors.
func convertClasses(file *schemaFile) ([]*ClassDescriptor, error) {
	byName := make(map[string]*ClassDescriptor, len(file.Classes))
	out := make([]*ClassDescriptor, 0, len(file.Classes))

	for _, c := range file.Classes {
		var d *ClassDescriptor
		if c.Parent != "" {
			parent, ok := byName[c.Parent]
			if !ok {
				return nil, &DefinitionError{TypeName: c.Name,
					Message: fmt.Sprintf("unknown parent class %q", c.Parent)}
			}
			d = parent.clone(c.Name)
		} else {
			d = NewClassDescriptor(c.Name)
		}

		for _, m := range c.Members {
			if err := convertMember(d, m); err != nil {
				return nil, err
			}
		}

		byName[c.Name] = d
		out = append(out, d)
	}

	return out, nil
}

func convertMember(d *ClassDescriptor, m *memberDef) error {
	switch {
	case m.Field != nil:
		f, err := convertField(d.TypeName(), m.Field)
		if err != nil {
			return err
		}
		return d.AddField(f)
	case m.Relation != nil:
		return d.AddRelation(convertRelation(m.Relation))
	case m.Discriminator != nil:
		return convertDiscriminator(d, m.Discriminator)
	}
	return nil
}

func convertField(typeName string, f *fieldDef) (*FieldDescriptor, error) {
	fd := &FieldDescriptor{Name: f.Name, Identifier: f.ID}

	switch {
	case f.Enum != nil:
		fd.Type = FieldEnumerated
		for _, raw := range f.Enum.Values {
			v, err := strconv.Unquote(raw)
			if err != nil {
				return nil, &DefinitionError{TypeName: typeName,
					Message: fmt.Sprintf("field %q: bad enum value %s", f.Name, raw)}
			}
			fd.Enum = append(fd.Enum, v)
		}
	case f.Type == "array":
		fd.Type = FieldArray
	case f.Type == "object":
		fd.Type = FieldObject
	case f.Type == "clob":
		fd.Type = FieldCompressedText
	case f.Type == "boolean":
		fd.Type = FieldBoolean
	default:
		// string, integer, float
		fd.Type = FieldPlain
	}

	return fd, nil
}

func convertRelation(r *relationDef) *RelationDescriptor {
	rd := &RelationDescriptor{
		Name:         r.Name,
		Target:       r.Target,
		Lazy:         r.Lazy,
		LocalField:   r.Local,
		ForeignField: r.Foreign,
	}

	switch r.Shape {
	case "one-to-many":
		rd.Shape = OneToMany
	case "many-to-many":
		rd.Shape = ManyToMany
	default:
		rd.Shape = OneToOne
	}

	if r.Owning == "foreign" {
		rd.Side = ForeignSide
	}

	return rd
}

func convertDiscriminator(d *ClassDescriptor, disc *discriminatorDef) error {
	kind := InheritanceSingleTable
	if disc.Kind == "joined-table" {
		kind = InheritanceJoinedTable
	}

	discrMap := make(map[string]int64, len(disc.Entries))
	for _, e := range disc.Entries {
		if _, ok := discrMap[e.TypeName]; ok {
			return &DefinitionError{TypeName: d.TypeName(),
				Message: fmt.Sprintf("duplicate discriminator entry %q", e.TypeName)}
		}
		discrMap[e.TypeName] = e.Value
	}

	d.SetInheritance(kind, disc.Column, discrMap)
	return nil
}
