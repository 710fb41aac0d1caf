package console

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romhub/pkg/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenMigrated(database.Config{Path: filepath.Join(t.TempDir(), "romhub.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetByName(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	c, err := repo.GetByName(ctx, "Super Nintendo Entertainment System")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "snes", c.Abbreviation)
	assert.Equal(t, "Nintendo", c.Manufacturer)
	assert.False(t, c.InLibrary)

	c, err = repo.GetByName(ctx, "super nintendo entertainment system")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestListSortsNaturally(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`
		INSERT INTO consoles (name, abbreviation, manufacturer) VALUES
			('Game Boy 10', 'gb10', 'Nintendo'),
			('Game Boy 9', 'gb9', 'Nintendo')
	`)
	require.NoError(t, err)

	items, err := NewRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 12)

	names := make([]string, 0, 5)
	for _, c := range items[:5] {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Game Boy", "Game Boy 9", "Game Boy 10", "Game Boy Advance", "Game Boy Color"}, names)
	assert.Equal(t, "Super Nintendo Entertainment System", items[len(items)-1].Name)
}

func TestAbbreviations(t *testing.T) {
	abbrs, err := NewRepo(openTestDB(t)).Abbreviations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gb", "gba", "gbc", "gg", "md", "n64", "nes", "pce", "sms", "snes"}, abbrs)
}

func TestSetInLibrary(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	found, err := repo.SetInLibrary(ctx, 3, true)
	require.NoError(t, err)
	assert.True(t, found)

	c, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.True(t, c.InLibrary)

	found, err = repo.SetInLibrary(ctx, 404, true)
	require.NoError(t, err)
	assert.False(t, found)
}
