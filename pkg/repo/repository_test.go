package repo

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/internal/codec"
	"github.com/mesh-intelligence/larder/internal/filestore"
	"github.com/mesh-intelligence/larder/internal/sqlite"
	"github.com/mesh-intelligence/larder/pkg/entities"
	"github.com/mesh-intelligence/larder/pkg/schema"
	"github.com/mesh-intelligence/larder/pkg/types"
)

type backend struct {
	name  string
	codec types.Codec
	open  func(t *testing.T) types.Store
}

var backends = []backend{
	{"files json", codec.JSON{}, func(t *testing.T) types.Store {
		d, err := filestore.NewDir(t.TempDir(), ".json")
		require.NoError(t, err)
		return d
	}},
	{"files yaml", codec.YAML{}, func(t *testing.T) types.Store {
		d, err := filestore.NewDir(t.TempDir(), ".yaml")
		require.NoError(t, err)
		return d
	}},
	{"jsonl", codec.JSON{}, func(t *testing.T) types.Store {
		j, err := filestore.NewJSONL(t.TempDir())
		require.NoError(t, err)
		return j
	}},
	{"sqlite", codec.JSON{}, func(t *testing.T) types.Store {
		s, err := sqlite.Open(t.TempDir())
		require.NoError(t, err)
		return s
	}},
}

// eachBackend runs fn once per store backend with a fresh store.
func eachBackend(t *testing.T, fn func(t *testing.T, store types.Store, c types.Codec)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			store := b.open(t)
			t.Cleanup(func() { store.Close() })
			fn(t, store, b.codec)
		})
	}
}

func bookRepo(store types.Store, c types.Codec, opts ...Option[entities.Book]) *Repository[entities.Book] {
	opts = append([]Option[entities.Book]{WithCodec[entities.Book](c)}, opts...)
	return New(store, entities.BookSchema, opts...)
}

func book(t *testing.T, id, title string, year ...int) entities.Book {
	t.Helper()
	fields := map[string]any{"id": id, "title": title}
	if len(year) > 0 {
		fields["year"] = year[0]
	}
	b, err := entities.NewBook(fields)
	require.NoError(t, err)
	return b
}

func TestBookScenario(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		b1 := book(t, "b1", "Dune")

		id, err := r.Save(b1).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "b1", id)

		got, err := r.Load("b1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, entities.Book{ID: "b1", Title: "Dune"}, got)
		assert.Nil(t, got.Year)

		assert.ErrorIs(t, r.Load("missing").Error(), types.ErrNotFound)

		require.NoError(t, r.Delete("b1").Error())
		assert.ErrorIs(t, r.Load("b1").Error(), types.ErrNotFound)
	})
}

func TestRoundTripKeepsOptionalFields(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		want := book(t, "b2", "Emma", 1815)
		require.True(t, r.Save(want).IsOk())

		got, err := r.Load("b2").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestSaveRejectsEntitiesTheSchemaRejects(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		books := bookRepo(store, c)
		systems := New(store, entities.SystemSchema, WithCodec[entities.System](c))
		users := New(store, entities.UserSchema, WithCodec[entities.User](c))

		tests := []struct {
			name  string
			save  func() error
			load  func() error
			field string
			rule  string
		}{
			{
				"book without title",
				func() error { return books.Save(entities.Book{ID: "b1"}).Error() },
				func() error { return books.Load("b1").Error() },
				"title", types.RuleConstraint,
			},
			{
				"system without product list",
				func() error { return systems.Save(entities.System{ID: "s1", Name: "A"}).Error() },
				func() error { return systems.Load("s1").Error() },
				"product_ids", types.RuleMissing,
			},
			{
				"user with infinite spend",
				func() error { return users.Save(entities.User{ID: "u1", Name: "Ann", Spend: math.Inf(1)}).Error() },
				func() error { return users.Load("u1").Error() },
				"spend", types.RuleType,
			},
			{
				"user with negative spend",
				func() error { return users.Save(entities.User{ID: "u2", Name: "Bo", Spend: -1}).Error() },
				func() error { return users.Load("u2").Error() },
				"spend", types.RuleConstraint,
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.save()
				require.ErrorIs(t, err, types.ErrValidation)
				var ve *types.ValidationError
				require.True(t, errors.As(err, &ve))
				f, ok := ve.Field(tt.field)
				require.True(t, ok)
				assert.Equal(t, tt.rule, f.Rule)

				assert.ErrorIs(t, tt.load(), types.ErrNotFound, "nothing was written")
			})
		}
	})
}

func TestSaveNormalizesUnconstructedEntities(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		systems := New(store, entities.SystemSchema, WithCodec[entities.System](c))
		require.True(t, systems.Save(entities.System{ID: "s1", Name: "A", ProductIDs: []string{}}).IsOk())

		got, err := systems.Load("s1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, entities.System{ID: "s1", Name: "A", ProductIDs: []string{}}, got)
	})
}

// saveAndLoad constructs an entity from raw, saves it and loads it back.
func saveAndLoad[T schema.Entity](t *testing.T, store types.Store, c types.Codec, s *schema.Schema[T], raw map[string]any) {
	t.Helper()
	want, err := s.New(raw)
	require.NoError(t, err)

	r := New(store, s, WithCodec[T](c))
	require.NoError(t, r.Save(want).Error())
	got, err := r.Load(want.EntityID()).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEveryValidEntityIsPersistable(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		saveAndLoad(t, store, c, entities.BookSchema, map[string]any{"id": "b1", "title": "Dune", "year": math.MaxInt})
		saveAndLoad(t, store, c, entities.BookSchema, map[string]any{"id": "B/2 ü", "title": "Kōkoro", "year": math.MinInt})
		saveAndLoad(t, store, c, entities.UserSchema, map[string]any{"id": "u1", "name": "Ann", "spend": math.MaxFloat64})
		saveAndLoad(t, store, c, entities.UserSchema, map[string]any{"id": "u2", "name": "Bo", "spend": 0.1, "email": "bo@example.com"})
		saveAndLoad(t, store, c, entities.ProductSchema, map[string]any{"id": "p1", "sku": "F-1", "price": "12345678901234567890.125"})
		saveAndLoad(t, store, c, entities.ProductGroupSchema, map[string]any{"tag": "core", "path": "/core"})
		saveAndLoad(t, store, c, entities.SystemSchema, map[string]any{"id": "s1", "name": "A", "product_ids": []string{}})
	})
}

func TestOverwriteKeepsSecondValue(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())
		require.True(t, r.Save(book(t, "b1", "Dune Messiah")).IsOk())

		got, err := r.Load("b1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", got.Title)

		all, err := r.List().Unwrap()
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})
}

func TestListReturnsEverySavedEntitySorted(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)

		empty, err := r.List().Unwrap()
		require.NoError(t, err)
		assert.Empty(t, empty)

		for _, id := range []string{"c", "a", "b", "Upper Case", "x/y"} {
			require.True(t, r.Save(book(t, id, "title "+id)).IsOk())
		}

		all, err := r.List().Unwrap()
		require.NoError(t, err)
		var ids []string
		for _, b := range all {
			ids = append(ids, b.ID)
		}
		assert.Equal(t, []string{"Upper Case", "a", "b", "c", "x/y"}, ids)
	})
}

func TestDeleteMissing(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		assert.ErrorIs(t, r.Delete("nope").Error(), types.ErrNotFound)
	})
}

func TestEmptyIDIsInvalid(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		assert.ErrorIs(t, r.Save(entities.Book{Title: "x"}).Error(), types.ErrInvalidID)
		assert.ErrorIs(t, r.Load("").Error(), types.ErrInvalidID)
		assert.ErrorIs(t, r.Delete("").Error(), types.ErrInvalidID)
		assert.ErrorIs(t, r.Exists("").Error(), types.ErrInvalidID)
	})
}

func TestCorruptRecordFailsListButNotScan(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())
		require.True(t, r.Save(book(t, "b3", "Emma")).IsOk())
		require.NoError(t, store.Write("books", "b2", []byte(`{"id":"b2"}`)))

		err := r.Load("b2").Error()
		require.ErrorIs(t, err, types.ErrValidation)
		var ve *types.ValidationError
		require.True(t, errors.As(err, &ve))
		_, ok := ve.Field("title")
		assert.True(t, ok)

		assert.ErrorIs(t, r.List().Error(), types.ErrValidation)

		report, err := r.Scan().Unwrap()
		require.NoError(t, err)
		require.Len(t, report.Entities, 2)
		assert.Equal(t, "b1", report.Entities[0].ID)
		assert.Equal(t, "b3", report.Entities[1].ID)
		require.Len(t, report.Failures, 1)
		assert.Equal(t, "b2", report.Failures[0].ID)
		assert.ErrorIs(t, report.Failures[0].Err, types.ErrValidation)
	})
}

func TestRecordUnderWrongIDIsSerializationError(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		require.NoError(t, store.Write("books", "b1", []byte(`{"id":"b9","title":"Dune"}`)))
		assert.ErrorIs(t, r.Load("b1").Error(), types.ErrSerialization)
	})
}

func TestUnparsableRecordIsSerializationError(t *testing.T) {
	d, err := filestore.NewDir(t.TempDir(), ".json")
	require.NoError(t, err)
	r := bookRepo(d, codec.JSON{})

	require.NoError(t, d.Write("books", "b1", []byte("{not json")))
	assert.ErrorIs(t, r.Load("b1").Error(), types.ErrSerialization)
}

func TestTrailingBytesAreSerializationError(t *testing.T) {
	d, err := filestore.NewDir(t.TempDir(), ".json")
	require.NoError(t, err)
	r := bookRepo(d, codec.JSON{})

	require.NoError(t, d.Write("books", "b1", []byte(`{"id":"b1","title":"x"}junk`)))
	assert.ErrorIs(t, r.Load("b1").Error(), types.ErrSerialization)
}

func TestUnwritablePathIsIOError(t *testing.T) {
	root := t.TempDir()
	// A plain file where the collection directory belongs.
	require.NoError(t, os.WriteFile(filepath.Join(root, "books"), nil, 0o644))

	r, err := Open(root, entities.BookSchema)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	assert.ErrorIs(t, r.Save(book(t, "b1", "Dune")).Error(), types.ErrIO)
}

func TestOpenUsesCodecExtension(t *testing.T) {
	root := t.TempDir()
	r, err := Open(root, entities.BookSchema, WithCodec[entities.Book](codec.YAML{}))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())
	_, err = os.Stat(filepath.Join(root, "books", "b1.yaml"))
	assert.NoError(t, err)
	assert.Equal(t, "books", r.Collection())
}

func TestCreateAndUpdate(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)

		created, err := r.Create(book(t, "b1", "Dune")).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "Dune", created.Title)

		assert.ErrorIs(t, r.Create(book(t, "b1", "Other")).Error(), types.ErrAlreadyExists)
		assert.ErrorIs(t, r.Update(book(t, "b2", "Emma")).Error(), types.ErrNotFound)

		updated, err := r.Update(book(t, "b1", "Dune Messiah")).Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", updated.Title)

		exists, err := r.Exists("b1").Unwrap()
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = r.Exists("b2").Unwrap()
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestPatch(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c)
		require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())

		got, err := r.Patch("b1", map[string]any{"year": 1965}).Unwrap()
		require.NoError(t, err)
		require.NotNil(t, got.Year)
		assert.Equal(t, 1965, *got.Year)
		assert.Equal(t, "Dune", got.Title)

		loaded, err := r.Load("b1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, got, loaded)

		err = r.Patch("b1", map[string]any{"title": ""}).Error()
		assert.ErrorIs(t, err, types.ErrValidation)

		err = r.Patch("b1", map[string]any{"pages": 412}).Error()
		var ve *types.ValidationError
		require.True(t, errors.As(err, &ve))
		f, ok := ve.Field("pages")
		require.True(t, ok)
		assert.Equal(t, types.RuleUnknown, f.Rule)

		assert.ErrorIs(t, r.Patch("b1", map[string]any{"id": "b2"}).Error(), types.ErrValidation)
		assert.ErrorIs(t, r.Patch("b9", map[string]any{"year": 1}).Error(), types.ErrNotFound)

		unchanged, err := r.Load("b1").Unwrap()
		require.NoError(t, err)
		assert.Equal(t, "Dune", unchanged.Title)
	})
}

func TestUniqueRules(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c, WithUnique[entities.Book](UniqueNoCase("title")))
		require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())

		assert.ErrorIs(t, r.Save(book(t, "b2", "DUNE")).Error(), types.ErrUniqueViolation)
		assert.True(t, r.Save(book(t, "b1", "dune")).IsOk(), "an entity never conflicts with itself")
		assert.True(t, r.Save(book(t, "b2", "Emma")).IsOk())
	})
}

func TestUniqueCaseSensitive(t *testing.T) {
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c, WithUnique[entities.Book](Unique("title"), Unique("year")))
		require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())

		assert.True(t, r.Save(book(t, "b2", "DUNE")).IsOk())
		assert.ErrorIs(t, r.Save(book(t, "b3", "Dune")).Error(), types.ErrUniqueViolation)

		require.True(t, r.Save(book(t, "b4", "Emma", 1815)).IsOk(), "nil years never conflict")
		assert.ErrorIs(t, r.Save(book(t, "b5", "Persuasion", 1815)).Error(), types.ErrUniqueViolation)
	})
}

func TestValidatorSeesOtherEntities(t *testing.T) {
	limit := func(candidate entities.Book, others []entities.Book) error {
		if len(others) >= 2 {
			return errors.New("shelf is full")
		}
		return nil
	}
	eachBackend(t, func(t *testing.T, store types.Store, c types.Codec) {
		r := bookRepo(store, c, WithValidator[entities.Book](limit))
		require.True(t, r.Save(book(t, "b1", "Dune")).IsOk())
		require.True(t, r.Save(book(t, "b2", "Emma")).IsOk())
		require.True(t, r.Save(book(t, "b2", "Emma again")).IsOk())

		err := r.Save(book(t, "b3", "Persuasion")).Error()
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Contains(t, err.Error(), "shelf is full")
	})
}

func TestCloseOnlyReleasesOwnedStore(t *testing.T) {
	d, err := filestore.NewDir(t.TempDir(), ".json")
	require.NoError(t, err)
	r := bookRepo(d, codec.JSON{})

	require.NoError(t, r.Close())
	assert.True(t, r.Save(book(t, "b1", "Dune")).IsOk())

	owned, err := Open(t.TempDir(), entities.BookSchema)
	require.NoError(t, err)
	require.NoError(t, owned.Close())
	assert.ErrorIs(t, owned.Save(book(t, "b1", "Dune")).Error(), types.ErrIO)
}
