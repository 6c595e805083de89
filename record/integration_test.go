package record

import (
	"context"
	"testing"

	"github.com/CaliLuke/go-record/conn"
	"github.com/CaliLuke/go-record/schema"
)

const integrationSchema = `
class author (
    field id integer @id,
    field name string,
    field active boolean,
    relation books one-to-many book @lazy local(id) foreign(author_id),
);

class book (
    field id integer @id,
    field author_id integer,
    field title string,
);
`

// TestIntegration_WriteAndLazyLoad runs the full loop: parse a schema, build
// a write payload against a real sqlite connection, persist it, and lazily
// load a relation back through the manager's loader hook.
func TestIntegration_WriteAndLazyLoad(t *testing.T) {
	ctx := context.Background()

	reg := schema.NewRegistry()
	if err := schema.ParseInto(reg, integrationSchema); err != nil {
		t.Fatalf("ParseInto: %v", err)
	}
	m := NewManager(reg)

	db, err := conn.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer db.Close()

	for _, ddl := range []string{
		`CREATE TABLE author (id INTEGER PRIMARY KEY, name TEXT, active INTEGER)`,
		`CREATE TABLE book (id INTEGER PRIMARY KEY, author_id INTEGER, title TEXT)`,
	} {
		if err := db.Exec(ctx, ddl); err != nil {
			t.Fatalf("Exec ddl: %v", err)
		}
	}

	m.SetRelationLoader(func(rec *Record, name string) (any, error) {
		rel, _ := rec.Descriptor().Relation(name)
		local, err := rec.Value(rel.LocalField)
		if err != nil {
			return nil, err
		}
		rows, err := db.Query(ctx,
			`SELECT id, author_id, title FROM book WHERE author_id = ? ORDER BY id`, local)
		if err != nil {
			return nil, err
		}
		coll := NewCollection()
		for _, row := range rows {
			m.StageHydration(rel.Target, row)
			b, err := m.NewRecord(rel.Target)
			if err != nil {
				return nil, err
			}
			coll.Add(b)
		}
		return coll, nil
	})

	// Write path: changeset to payload, payload to the store.
	a := mustRecord(t, m, "author")
	if err := a.SetValue("name", "Ada"); err != nil {
		t.Fatal(err)
	}
	if err := a.SetValue("active", true); err != nil {
		t.Fatal(err)
	}

	payload, err := a.BuildWritePayload(db)
	if err != nil {
		t.Fatalf("BuildWritePayload: %v", err)
	}
	if err := db.Exec(ctx, `INSERT INTO author (id, name, active) VALUES (?, ?, ?)`,
		1, payload["name"], payload["active"]); err != nil {
		t.Fatalf("Exec insert: %v", err)
	}
	if err := a.AssignIdentifier(int64(1)); err != nil {
		t.Fatalf("AssignIdentifier: %v", err)
	}
	if a.IsModified() {
		t.Error("record still modified after identifier assignment")
	}

	for i, title := range []string{"Notes", "Diagrams"} {
		if err := db.Exec(ctx, `INSERT INTO book (id, author_id, title) VALUES (?, ?, ?)`,
			i+1, 1, title); err != nil {
			t.Fatalf("Exec insert book: %v", err)
		}
	}

	// Lazy path: the relation materializes through the loader.
	got, err := a.Value("books")
	if err != nil {
		t.Fatalf("Value(books): %v", err)
	}
	books, ok := got.(*Collection)
	if !ok {
		t.Fatalf("books: got %T, want *Collection", got)
	}
	if books.Len() != 2 {
		t.Fatalf("books: got %d, want 2", books.Len())
	}

	first := books.At(0)
	if got := first.State(); got != StateManaged {
		t.Errorf("loaded book state: got %v, want managed", got)
	}
	if title, _ := first.Value("title"); title != "Notes" {
		t.Errorf("title: got %v, want Notes", title)
	}
	if id := first.Identity(); id["id"] != int64(1) {
		t.Errorf("book identity: got %v", id)
	}
}
