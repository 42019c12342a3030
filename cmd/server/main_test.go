package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsvc "gemcanvas/internal/app"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func useTempStore(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "gemcanvas.db"))
	t.Setenv("APP_ENV", "test")
}

func TestMigrateCommand(t *testing.T) {
	useTempStore(t)
	out := runCmd(t, "migrate")
	assert.Contains(t, out, "gems: from v2")
	assert.Contains(t, out, "knowledge bases: from v2")
}

func TestGemsListCommand(t *testing.T) {
	useTempStore(t)
	out := runCmd(t, "gems", "list")
	assert.Contains(t, out, "SIGNATURE")
}

func TestGemsDeleteUnknown(t *testing.T) {
	useTempStore(t)
	root := newRootCmd()
	root.SetArgs([]string{"gems", "delete", "--yes", "gem-missing"})
	err := root.Execute()
	assert.ErrorIs(t, err, appsvc.ErrGemNotFound)
}
