package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brewhouse/internal/catalog/memory"
)

func TestFS_ContainsOrderedUpMigrations(t *testing.T) {
	entries, err := fs.ReadDir(FS, ".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"001_create_catalog.up.sql", "002_seed_menu.up.sql"}, names)
}

func TestSeed_MatchesInMemoryMenu(t *testing.T) {
	seed, err := fs.ReadFile(FS, "002_seed_menu.up.sql")
	require.NoError(t, err)
	sql := string(seed)

	for _, p := range memory.SeedProducts() {
		row := "('" + p.ID + "', '" + p.Name + "'"
		assert.Truef(t, strings.Contains(sql, row), "seed row for %s missing", p.ID)
		assert.Contains(t, sql, p.Price.StringFixed(2)+", '/images/"+p.ID+".jpg'")
	}
	for _, a := range memory.SeedAddOns() {
		row := "('" + a.ID + "', '" + a.Name + "', '" + a.Description + "', " + a.Price.StringFixed(2) + ", '" + a.Type + "')"
		assert.Contains(t, sql, row)
	}
}
