package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rifty/internal/facade"
	"github.com/ramonehamilton/rifty/internal/projection"
)

type cli struct {
	t      *testing.T
	dir    string
	config string
	db     string
}

func newCLI(t *testing.T) *cli {
	dir := t.TempDir()
	return &cli{t: t, dir: dir, config: filepath.Join(dir, "config.toml"), db: filepath.Join(dir, "rifty.db")}
}

func (c *cli) run(args ...string) (int, string, string) {
	c.t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-config", c.config, "-db", c.db}, args...)
	code := run(full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_NoArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: rifty")
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, stderr := newCLI(t).run("frobnicate")

	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Unknown command: frobnicate")
}

func TestRun_BulkListRemove(t *testing.T) {
	c := newCLI(t)

	code, out, stderr := c.run("bulk", "-set", "OGN", "7", "7a", "x", "99")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Added 2 card(s) from OGN")
	assert.Contains(t, out, "No match: 99")
	assert.Contains(t, out, "Skipped: x")

	code, out, _ = c.run("list", "-json")
	require.Equal(t, 0, code)
	var snap facade.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, 2, snap.TotalCount)

	code, _, stderr = c.run("remove", "-set", "OGN", "-number", "7", "-alt")
	require.Equal(t, 0, code, stderr)

	code, out, _ = c.run("list", "-json")
	require.Equal(t, 0, code)
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Len(t, snap.Items, 1)
	assert.False(t, snap.Items[0].IsAlternate)

	code, _, _ = c.run("remove", snap.Items[0].InstanceID)
	assert.Equal(t, 0, code)
	code, _, _ = c.run("remove", snap.Items[0].InstanceID)
	assert.Equal(t, 1, code)
}

func TestRun_ListFiltersAndSorts(t *testing.T) {
	c := newCLI(t)
	code, _, _ := c.run("bulk", "-set", "OGN", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12")
	require.Equal(t, 0, code)

	code, out, _ := c.run("list", "-kind", "Rune", "-sort", "cost", "-desc", "-json")
	require.Equal(t, 0, code)
	var snap facade.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "cost", string(snap.Sort.Field))
	assert.Equal(t, "desc", string(snap.Sort.Direction))
	for _, item := range snap.Items {
		assert.Equal(t, "Rune", string(item.Kind))
	}

	code, _, stderr := c.run("list", "-rarity", "Mythic")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid filter value")

	code, out, _ = c.run("list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Showing 12 of 12 cards")
}

func TestRun_AddUnknown(t *testing.T) {
	c := newCLI(t)

	code, out, stderr := c.run("add", "OGN-7-fury", "nope")

	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Added OGN-7")
	assert.Contains(t, stderr, "nope")

	code, _, _ = c.run("add")
	assert.Equal(t, 2, code)
}

func TestRun_Sets(t *testing.T) {
	c := newCLI(t)
	c.run("add", "OGN-7-fury")

	code, out, _ := c.run("sets", "-json")
	require.Equal(t, 0, code)
	var view projection.CatalogView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Sets, 2)
	assert.Equal(t, 1, view.Sets[0].Stats.UniqueOwned)

	code, out, _ = c.run("sets", "-cards")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "OGN - Origins")
	assert.Contains(t, out, "Overall: 1/14 (7%)")
}

func TestRun_Search(t *testing.T) {
	code, out, _ := newCLI(t).run("search", "-limit", "3", "rune")

	require.Equal(t, 0, code)
	assert.Contains(t, out, "Rune")
	assert.LessOrEqual(t, strings.Count(out, "\n"), 4)
}

func TestRun_MigrateAndBackup(t *testing.T) {
	c := newCLI(t)

	code, out, _ := c.run("migrate", "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Current version: 0 (latest 1, run 'migrate up')")

	code, out, _ = c.run("migrate", "up")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Current version: 1")

	code, out, _ = c.run("migrate", "status")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Current version: 1")

	code, _, _ = c.run("migrate", "sideways")
	assert.Equal(t, 2, code)

	code, out, stderr := c.run("backup", "create", "-name", "snap")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "snap.db")

	code, out, _ = c.run("backup", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "snap.db")

	code, _, _ = c.run("backup")
	assert.Equal(t, 2, code)
}

func TestRun_Report(t *testing.T) {
	c := newCLI(t)
	out := filepath.Join(c.dir, "chart.html")

	code, stdout, stderr := c.run("report", "-out", out)

	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "chart.html")
	assert.FileExists(t, out)
}

func TestRun_InvalidConfig(t *testing.T) {
	c := newCLI(t)
	t.Setenv("RIFTY_LOCALE", "not a locale!")

	code, _, stderr := c.run("list")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid config")
}

func TestRun_Version(t *testing.T) {
	code, out, _ := newCLI(t).run("version")

	assert.Equal(t, 0, code)
	assert.Equal(t, "rifty dev\n", out)
}
