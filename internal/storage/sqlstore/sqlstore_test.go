package sqlstore

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/formbuilder/internal/fieldtree"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, username+"@example.com", "hash", false)
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func createForm(t *testing.T, store *Store, owner int64, doc string) *models.Form {
	t.Helper()
	structure, err := fieldtree.Parse([]byte(doc))
	require.NoError(t, err)
	form := &models.Form{Title: "Intake", CreatedBy: owner, Structure: structure}
	require.NoError(t, store.CreateForm(context.Background(), form))
	return form
}

func ptr[T any](v T) *T { return &v }

func TestSQLiteStore_Users(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser assigns ID", func(t *testing.T) {
		user := createUser(t, store, "alice")
		assert.NotZero(t, user.ID)

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.False(t, got.IsAdmin)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		err := store.CreateUser(ctx, models.NewUser("alice", "", "hash", false))
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("GetUserByUsername", func(t *testing.T) {
		got, err := store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)

		_, err = store.GetUserByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UpdateUser saves admin flag", func(t *testing.T) {
		user := createUser(t, store, "bob")
		user.IsAdmin = true
		user.Email = "bob@corp.example"
		require.NoError(t, store.UpdateUser(ctx, user))

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin)
		assert.Equal(t, "bob@corp.example", got.Email)
	})

	t.Run("UpdatePassword bumps token version", func(t *testing.T) {
		user := createUser(t, store, "carol")
		v, err := store.UpdatePassword(ctx, user.ID, "new-hash")
		require.NoError(t, err)
		assert.Equal(t, int64(1), v)

		got, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", got.PasswordHash)
		assert.Equal(t, int64(1), got.TokenVersion)

		_, err = store.UpdatePassword(ctx, 9999, "x")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListUsers", func(t *testing.T) {
		users, err := store.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 3)
	})
}

func TestSQLiteStore_RevokedTokens(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createUser(t, store, "alice")

	now := time.Now().Unix()
	require.NoError(t, store.RevokeToken(ctx, &models.RevokedToken{JTI: "old", UserID: user.ID, ExpiresAt: now - 60}))
	require.NoError(t, store.RevokeToken(ctx, &models.RevokedToken{JTI: "live", UserID: user.ID, ExpiresAt: now + 3600}))

	err := store.RevokeToken(ctx, &models.RevokedToken{JTI: "live", UserID: user.ID, ExpiresAt: now + 3600})
	assert.ErrorIs(t, err, storage.ErrConflict)

	revoked, err := store.IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsTokenRevoked(ctx, "never-seen")
	require.NoError(t, err)
	assert.False(t, revoked)

	n, err := store.PruneRevokedTokens(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	revoked, err = store.IsTokenRevoked(ctx, "old")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestSQLiteStore_Forms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")

	t.Run("structure keeps member order", func(t *testing.T) {
		doc := `{"zeta":{"y":"string","x":"number"},"alpha":"string","mid":{"type":"array","items":{"b":"string","a":"string"}}}`
		form := createForm(t, store, owner.ID, doc)

		got, err := store.GetForm(ctx, form.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, got.Structure.Names())

		out, err := json.Marshal(got.Structure)
		require.NoError(t, err)
		assert.Equal(t, doc, string(out))
	})

	t.Run("identifier is optional", func(t *testing.T) {
		form := createForm(t, store, owner.ID, `{"a":"string"}`)
		got, err := store.GetForm(ctx, form.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Identifier)

		got.Identifier = ptr("EXT-7")
		got.Title = "Renamed"
		require.NoError(t, store.UpdateForm(ctx, got))

		again, err := store.GetForm(ctx, form.ID)
		require.NoError(t, err)
		require.NotNil(t, again.Identifier)
		assert.Equal(t, "EXT-7", *again.Identifier)
		assert.Equal(t, "Renamed", again.Title)
	})

	t.Run("ListForms filters by owner", func(t *testing.T) {
		other := createUser(t, store, "other")
		createForm(t, store, other.ID, `{"q":"string"}`)

		all, err := store.ListForms(ctx, storage.FormFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)

		mine, err := store.ListForms(ctx, storage.FormFilter{CreatedBy: &other.ID})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, other.ID, mine[0].CreatedBy)
	})

	t.Run("missing form", func(t *testing.T) {
		_, err := store.GetForm(ctx, 4242)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = store.UpdateForm(ctx, &models.Form{ID: 4242, Title: "x"})
		assert.ErrorIs(t, err, storage.ErrNotFound)

		assert.ErrorIs(t, store.DeleteForm(ctx, 4242), storage.ErrNotFound)
	})

	t.Run("form must reference an existing user", func(t *testing.T) {
		err := store.CreateForm(ctx, &models.Form{Title: "orphan", CreatedBy: 9999})
		assert.ErrorIs(t, err, storage.ErrConflict)
	})
}

func TestSQLiteStore_DeleteFormCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	doomed := createForm(t, store, owner.ID, `{"a":"string","b":"string"}`)
	kept := createForm(t, store, owner.ID, `{"a":"string"}`)

	for _, formID := range []int64{doomed.ID, kept.ID} {
		require.NoError(t, store.CreateFormField(ctx, &models.FormField{FormID: formID, Name: "a", Type: "string"}))
		require.NoError(t, store.CreatePreset(ctx, &models.Preset{Name: "p", CreatedBy: owner.ID, FormID: formID, PresetData: json.RawMessage(`{"a":"x"}`)}))
		require.NoError(t, store.CreateResponse(ctx, &models.FormResponse{FormID: formID, UserID: owner.ID, ResponseData: json.RawMessage(`{"a":"y"}`)}))
		require.NoError(t, store.CreateComment(ctx, &models.FieldComment{FormID: formID, FieldName: "a", UserID: owner.ID, Comment: "ok"}))
	}

	require.NoError(t, store.DeleteForm(ctx, doomed.ID))

	_, err := store.GetForm(ctx, doomed.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	fields, err := store.ListFormFields(ctx, &doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, fields)

	presets, err := store.ListPresets(ctx, storage.PresetFilter{FormID: &doomed.ID})
	require.NoError(t, err)
	assert.Empty(t, presets)

	responses, err := store.ListResponses(ctx, storage.ResponseFilter{FormID: &doomed.ID})
	require.NoError(t, err)
	assert.Empty(t, responses)

	comments, err := store.ListComments(ctx, storage.CommentFilter{FormID: &doomed.ID})
	require.NoError(t, err)
	assert.Empty(t, comments)

	// the other form is untouched
	fields, err = store.ListFormFields(ctx, &kept.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 1)
	responses, err = store.ListResponses(ctx, storage.ResponseFilter{FormID: &kept.ID})
	require.NoError(t, err)
	assert.Len(t, responses, 1)
}

func TestSQLiteStore_Responses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	submitter := createUser(t, store, "submitter")
	stranger := createUser(t, store, "stranger")
	form3 := createForm(t, store, owner.ID, `{"a":"string"}`)
	form4 := createForm(t, store, stranger.ID, `{"a":"string"}`)

	raw := `{"z":1,"unexpected":{"nested":[true,null]},"a":"text"}`
	resp := &models.FormResponse{FormID: form3.ID, UserID: submitter.ID, ResponseData: json.RawMessage(raw)}
	require.NoError(t, store.CreateResponse(ctx, resp))
	require.NoError(t, store.CreateResponse(ctx, &models.FormResponse{FormID: form4.ID, UserID: stranger.ID, ResponseData: json.RawMessage(`{}`)}))

	t.Run("document stored verbatim", func(t *testing.T) {
		got, err := store.GetResponse(ctx, resp.ID)
		require.NoError(t, err)
		assert.Equal(t, raw, string(got.ResponseData))
	})

	t.Run("filter by form", func(t *testing.T) {
		got, err := store.ListResponses(ctx, storage.ResponseFilter{FormID: &form3.ID})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, form3.ID, got[0].FormID)
	})

	t.Run("visible to submitter and form owner only", func(t *testing.T) {
		for _, tc := range []struct {
			name string
			user int64
			want int
		}{
			{"owner", owner.ID, 1},
			{"submitter", submitter.ID, 1},
			{"stranger sees own form", stranger.ID, 1},
		} {
			got, err := store.ListResponses(ctx, storage.ResponseFilter{VisibleTo: &tc.user})
			require.NoError(t, err, tc.name)
			assert.Len(t, got, tc.want, tc.name)
		}
	})

	t.Run("update and delete", func(t *testing.T) {
		resp.ResponseData = json.RawMessage(`{"a":"changed"}`)
		require.NoError(t, store.UpdateResponse(ctx, resp))
		got, err := store.GetResponse(ctx, resp.ID)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":"changed"}`, string(got.ResponseData))

		require.NoError(t, store.DeleteResponse(ctx, resp.ID))
		assert.ErrorIs(t, store.DeleteResponse(ctx, resp.ID), storage.ErrNotFound)
	})
}

func TestSQLiteStore_FieldsPresetsComments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createUser(t, store, "owner")
	form := createForm(t, store, owner.ID, `{"lines":{"type":"array","items":{"sku":"string"}}}`)

	t.Run("form field with nested fields", func(t *testing.T) {
		nested, err := fieldtree.Parse([]byte(`{"sku":"string","qty":"number"}`))
		require.NoError(t, err)
		field := &models.FormField{FormID: form.ID, Name: "lines", Type: "array", ItemType: ptr("object"), Fields: &nested}
		require.NoError(t, store.CreateFormField(ctx, field))

		got, err := store.GetFormField(ctx, field.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Fields)
		assert.Equal(t, []string{"sku", "qty"}, got.Fields.Names())
		require.NotNil(t, got.ItemType)
		assert.Equal(t, "object", *got.ItemType)
		assert.Nil(t, got.Comment)

		got.Comment = ptr("one row per product")
		got.Fields = nil
		require.NoError(t, store.UpdateFormField(ctx, got))
		again, err := store.GetFormField(ctx, field.ID)
		require.NoError(t, err)
		assert.Nil(t, again.Fields)
		assert.Equal(t, "one row per product", *again.Comment)

		require.NoError(t, store.DeleteFormField(ctx, field.ID))
		_, err = store.GetFormField(ctx, field.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("preset keeps data order", func(t *testing.T) {
		preset := &models.Preset{Name: "default", CreatedBy: owner.ID, FormID: form.ID, PresetData: json.RawMessage(`{"b":1,"a":2}`)}
		require.NoError(t, store.CreatePreset(ctx, preset))

		got, err := store.GetPreset(ctx, preset.ID)
		require.NoError(t, err)
		assert.Equal(t, `{"b":1,"a":2}`, string(got.PresetData))

		mine, err := store.ListPresets(ctx, storage.PresetFilter{CreatedBy: &owner.ID, FormID: &form.ID})
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		got.Name = "renamed"
		require.NoError(t, store.UpdatePreset(ctx, got))
		require.NoError(t, store.DeletePreset(ctx, got.ID))
		assert.ErrorIs(t, store.DeletePreset(ctx, got.ID), storage.ErrNotFound)
	})

	t.Run("comments filter by field", func(t *testing.T) {
		for _, name := range []string{"lines", "lines", "other"} {
			require.NoError(t, store.CreateComment(ctx, &models.FieldComment{FormID: form.ID, FieldName: name, UserID: owner.ID, Comment: "c"}))
		}
		got, err := store.ListComments(ctx, storage.CommentFilter{FormID: &form.ID, FieldName: ptr("lines")})
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got[0].Comment = "edited"
		require.NoError(t, store.UpdateComment(ctx, got[0]))
		c, err := store.GetComment(ctx, got[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "edited", c.Comment)
	})
}

func TestMigrations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v, err := store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	require.NoError(t, store.MigrateDown(ctx))
	v, err = store.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	require.NoError(t, store.Migrate(ctx))
	createUser(t, store, "after-remigrate")
}

func TestMigrations_LogThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := context.Background()
	store, err := Connect(ctx, "sqlite", filepath.Join(t.TempDir(), "logged.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))

	out := buf.String()
	assert.Contains(t, out, `"component":"migrations"`)
	assert.Contains(t, out, "migrated database to version: 1")
	assert.NotContains(t, out, "goose: ")
}

func TestGooseMessage(t *testing.T) {
	assert.Equal(t, "OK   00001_init.sql (1ms)", gooseMessage("OK   %s (%s)\n", "00001_init.sql", "1ms"))
	assert.Equal(t, "no migrations to run. current version: 1", gooseMessage("goose: no migrations to run. current version: %d\n", 1))
}

func TestConnect_DoesNotMigrate(t *testing.T) {
	ctx := context.Background()
	store, err := Connect(ctx, "sqlite", filepath.Join(t.TempDir(), "nested", "raw.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.Ping(ctx))
	_, err = store.GetUser(ctx, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Migrate(ctx))
	_, err = store.GetUser(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"sqlite", DialectSQLite, false},
		{"SQLite3", DialectSQLite, false},
		{"postgres", DialectPostgres, false},
		{"pgx", DialectPostgres, false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT a FROM t WHERE x = ? AND (y = ? OR z = ?)"
	assert.Equal(t, q, rebind(DialectSQLite, q))
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND (y = $2 OR z = $3)", rebind(DialectPostgres, q))
}

func TestPrepareSQLite(t *testing.T) {
	dir := t.TempDir()

	dsn, err := prepareSQLite(filepath.Join(dir, "nested", "db.sqlite"))
	require.NoError(t, err)
	assert.DirExists(t, filepath.Join(dir, "nested"))
	assert.Contains(t, dsn, "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")

	dsn, err = prepareSQLite(filepath.Join(dir, "db.sqlite") + "?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	assert.Contains(t, dsn, "&_pragma=busy_timeout(5000)")
}
