package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage/sqlstore"
)

type cliEnv struct {
	dir string
	dsn string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, k := range []string{"FORMBUILDER_CONFIG", "FORMBUILDER_ADDR", "FORMBUILDER_DB_DRIVER", "FORMBUILDER_DB_DSN", "FORMBUILDER_JWT_SECRET", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	return &cliEnv{dir: dir, dsn: filepath.Join(dir, "cli.db")}
}

func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", filepath.Join(e.dir, "absent.yaml"), "--db-dsn", e.dsn}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) store(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Connect(context.Background(), "sqlite", e.dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMigrateCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "", "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 1")

	out, err = env.run(t, "", "migrate", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 1")

	out, err = env.run(t, "", "migrate", "down")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version: 0")

	_, err = env.run(t, "", "migrate", "sideways")
	assert.ErrorContains(t, err, "unknown migrate action")
}

func TestCreateAdminCommand(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "password123\n", "create-admin", "--username", "root", "--email", "root@example.com", "--password-stdin")
	require.NoError(t, err)
	assert.Contains(t, out, `created admin "root"`)

	user, err := env.store(t).GetUserByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
	assert.Equal(t, "root@example.com", user.Email)

	_, err = env.run(t, "password123\n", "create-admin", "--username", "root", "--password-stdin")
	assert.Error(t, err)

	_, err = env.run(t, "short\n", "create-admin", "--username", "other", "--password-stdin")
	assert.Error(t, err)

	_, err = env.run(t, "", "create-admin", "--password-stdin")
	assert.ErrorContains(t, err, "--username is required")
}

func TestCreateAdminCommand_Prompt(t *testing.T) {
	env := newCLIEnv(t)

	orig := readPassword
	t.Cleanup(func() { readPassword = orig })

	answers := []string{"password123", "different456"}
	readPassword = func(int) ([]byte, error) {
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
	_, err := env.run(t, "", "create-admin", "--username", "root")
	assert.ErrorContains(t, err, "passwords do not match")

	readPassword = func(int) ([]byte, error) { return nil, errors.New("not a terminal") }
	_, err = env.run(t, "", "create-admin", "--username", "root")
	assert.ErrorContains(t, err, "--password-stdin")

	readPassword = func(int) ([]byte, error) { return []byte("password123"), nil }
	out, err := env.run(t, "", "create-admin", "--username", "root")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, `created admin "root"`)
}

func TestPruneTokensCommand(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "migrate")
	require.NoError(t, err)

	store := env.store(t)
	ctx := context.Background()
	user := models.NewUser("alice", "", "hash", false)
	require.NoError(t, store.CreateUser(ctx, user))
	now := time.Now().Unix()
	require.NoError(t, store.RevokeToken(ctx, &models.RevokedToken{JTI: "expired", UserID: user.ID, ExpiresAt: now - 60}))
	require.NoError(t, store.RevokeToken(ctx, &models.RevokedToken{JTI: "live", UserID: user.ID, ExpiresAt: now + 3600}))

	out, err := env.run(t, "", "prune-tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 1 revoked tokens")

	revoked, err := store.IsTokenRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = store.IsTokenRevoked(ctx, "expired")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestServeCommand_RequiresSecret(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "serve", "--addr", "127.0.0.1:0")
	assert.ErrorContains(t, err, "jwt_secret")
}

func TestRootCommand_Flags(t *testing.T) {
	env := newCLIEnv(t)
	t.Setenv("FORMBUILDER_JWT_SECRET", "secret")

	root := newRootCmd()
	var serve *cobra.Command
	for _, c := range root.Commands() {
		if c.Name() == "serve" {
			serve = c
		}
	}
	require.NotNil(t, serve)

	opts := &options{configPath: filepath.Join(env.dir, "absent.yaml"), dbDriver: "postgres", dbDSN: "postgres://flag"}
	require.NoError(t, opts.load(serve))
	assert.Equal(t, "postgres", opts.cfg.Database.Driver)
	assert.Equal(t, "postgres://flag", opts.cfg.Database.DSN)
	assert.Equal(t, "secret", opts.cfg.Auth.JWTSecret)
	assert.NotNil(t, opts.logger)
}
