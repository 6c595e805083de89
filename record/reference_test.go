package record

import (
	"testing"

	"github.com/CaliLuke/go-record/schema"
)

func TestSetReference_OneToManyRequiresCollection(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")

	err := r.SetValue("posts", "not a collection")
	if err == nil {
		t.Fatal("expected error")
	}
	refErr, ok := err.(*InvalidReferenceError)
	if !ok {
		t.Fatalf("error type: got %T, want *InvalidReferenceError", err)
	}
	if refErr.Shape != schema.OneToMany {
		t.Errorf("shape: got %v, want one-to-many", refErr.Shape)
	}
}

func TestSetReference_OneToOneRequiresRecord(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")

	err := r.SetValue("profile", 42)
	if err == nil {
		t.Fatal("expected error")
	}
	refErr, ok := err.(*InvalidReferenceError)
	if !ok {
		t.Fatalf("error type: got %T, want *InvalidReferenceError", err)
	}
	if refErr.Shape != schema.OneToOne {
		t.Errorf("shape: got %v, want one-to-one", refErr.Shape)
	}
}

func TestSetReference_ManyToManyRequiresCollection(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")

	err := r.SetValue("groups", mustRecord(t, m, "group"))
	if err == nil {
		t.Fatal("expected error")
	}
	refErr, ok := err.(*InvalidReferenceError)
	if !ok {
		t.Fatalf("error type: got %T, want *InvalidReferenceError", err)
	}
	if refErr.Shape != schema.ManyToMany {
		t.Errorf("shape: got %v, want many-to-many", refErr.Shape)
	}
}

func TestSetReference_ToManyMergesIntoCachedCollection(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	p1 := mustRecord(t, m, "post")
	p2 := mustRecord(t, m, "post")

	first := NewCollection(p1)
	if err := r.SetValue("posts", first); err != nil {
		t.Fatalf("SetValue: %v", err)
	}
	if err := r.SetValue("posts", NewCollection(p1, p2)); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	got, err := r.Reference("posts")
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	coll, ok := got.(*Collection)
	if !ok {
		t.Fatalf("reference: got %T, want *Collection", got)
	}
	// The original container keeps its identity; new contents merged in.
	if coll != first {
		t.Error("cached collection was replaced instead of merged")
	}
	if coll.Len() != 2 {
		t.Errorf("Len: got %d, want 2", coll.Len())
	}
}

func TestSetReference_LocalSideObjectValuedForeignKey(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	prof := mustRecord(t, m, "profile")

	// profile's foreign field "id" is its identifier, so the local field
	// holds the record itself, resolved by the persister at save time.
	if err := r.SetValue("profile", prof); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	got, err := r.Value("profile_id")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != prof {
		t.Errorf("profile_id: got %v, want the related record", got)
	}
}

func TestSetReference_LocalSideDenormalizedForeignKey(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	av := mustRecord(t, m, "avatar")

	// avatar's "storage_key" is not an identifier, so its value is copied
	// into the local field.
	if err := av.SetValue("storage_key", "blob/7"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetValue("avatar", av); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	got, err := r.Value("avatar_key")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != "blob/7" {
		t.Errorf("avatar_key: got %v, want blob/7", got)
	}
}

func TestSetReference_InverseSideWritesBackOnRelated(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	prof := mustRecord(t, m, "profile")

	if err := r.SetValue("mirror", prof); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	// The related record's foreign field now points back at r.
	got, err := prof.Value("person_id")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != r {
		t.Errorf("person_id on related: got %v, want the owning record", got)
	}
	if !prof.IsModified() {
		t.Error("related record not dirtied by inverse-side assignment")
	}
}

func TestSetReference_NilRecordsNull(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")

	if err := r.SetValue("profile", nil); err != nil {
		t.Fatalf("SetValue(nil): %v", err)
	}
	if !r.HasReference("profile") {
		t.Error("HasReference: got false, want true")
	}
	got, err := r.Reference("profile")
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if got != nil {
		t.Errorf("Reference: got %v, want nil", got)
	}
	if r.Contains("profile") {
		t.Error("Contains(null reference): got true")
	}
}

func TestReference_UnknownName(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")

	_, err := r.Reference("posts")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*UnknownReferenceError); !ok {
		t.Errorf("error type: got %T, want *UnknownReferenceError", err)
	}
}

func TestRemove_ToOneReferenceBecomesNull(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	prof := mustRecord(t, m, "profile")

	if err := r.SetValue("profile", prof); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("profile"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	got, err := r.Reference("profile")
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if got != nil {
		t.Errorf("removed reference: got %v, want nil", got)
	}
}

func TestRemove_CollectionClearedInPlace(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	coll := NewCollection(mustRecord(t, m, "post"))

	if err := r.SetValue("posts", coll); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove("posts"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if coll.Len() != 0 {
		t.Errorf("collection not cleared in place: len %d", coll.Len())
	}
	got, err := r.Reference("posts")
	if err != nil {
		t.Fatalf("Reference: %v", err)
	}
	if got != coll {
		t.Error("collection reference replaced instead of cleared")
	}
}

func TestValue_LazyRelationLoadedOnceAndCached(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	loaded := NewCollection(mustRecord(t, m, "post"))

	calls := 0
	m.SetRelationLoader(func(rec *Record, name string) (any, error) {
		calls++
		if rec != r {
			t.Errorf("loader got record %v", rec.Oid())
		}
		if name != "posts" {
			t.Errorf("loader got relation %q", name)
		}
		return loaded, nil
	})

	for i := 0; i < 2; i++ {
		got, err := r.Value("posts")
		if err != nil {
			t.Fatalf("Value: %v", err)
		}
		if got != loaded {
			t.Errorf("Value: got %v, want loaded collection", got)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls: got %d, want 1 (result cached)", calls)
	}
}

func TestValue_NonLazyRelationIsNil(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")

	m.SetRelationLoader(func(rec *Record, name string) (any, error) {
		t.Error("loader invoked for non-lazy relation")
		return nil, nil
	})

	got, err := r.Value("profile")
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != nil {
		t.Errorf("Value: got %v, want nil", got)
	}
}

func TestSetRelatedCollection(t *testing.T) {
	m := testManager(t)
	r := mustRecord(t, m, "person")
	coll := NewCollection()

	r.SetRelatedCollection("posts", coll)

	refs := r.References()
	if refs["posts"] != coll {
		t.Errorf("References: got %v", refs)
	}
}

func TestCollection_MergeSkipsDuplicates(t *testing.T) {
	m := testManager(t)
	a := mustRecord(t, m, "post")
	b := mustRecord(t, m, "post")

	c1 := NewCollection(a)
	c1.Merge(NewCollection(a, b))

	if c1.Len() != 2 {
		t.Errorf("Len: got %d, want 2", c1.Len())
	}
	if c1.At(0) != a || c1.At(1) != b {
		t.Error("merge order wrong")
	}
}
