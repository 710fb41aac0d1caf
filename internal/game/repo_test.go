package game

import (
	"bytes"
	"context"
	"database/sql"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romhub/internal/importer"
	"romhub/pkg/database"
	"romhub/pkg/models"
)

const snesID = 1

// consolesByName resolves header names without the console package, which
// itself depends on this one.
type consolesByName struct {
	db *sql.DB
}

func (c consolesByName) GetByName(ctx context.Context, name string) (*models.Console, error) {
	var cons models.Console
	err := c.db.QueryRowContext(ctx, `SELECT id, name, abbreviation FROM consoles WHERE name = ?`, name).
		Scan(&cons.ID, &cons.Name, &cons.Abbreviation)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cons, nil
}

func seededRepo(t *testing.T) (*Repo, *sql.DB) {
	t.Helper()
	db, err := database.OpenMigrated(database.Config{Path: filepath.Join(t.TempDir(), "romhub.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	im := importer.New(db, consolesByName{db: db}, log.New(&bytes.Buffer{}, "", 0))
	_, err = im.ImportFile(context.Background(), filepath.Join("..", "dat", "testdata", "sample.dat"))
	require.NoError(t, err)
	return NewRepo(db), db
}

func gameID(t *testing.T, db *sql.DB, title string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, db.QueryRow(`SELECT id FROM games WHERE title = ?`, title).Scan(&id))
	return id
}

func TestListByConsole(t *testing.T) {
	repo, _ := seededRepo(t)

	games, err := repo.ListByConsole(context.Background(), snesID)
	require.NoError(t, err)

	titles := make([]string, len(games))
	for i, g := range games {
		titles[i] = g.Title
	}
	assert.Equal(t, []string{
		"'96 Zenkoku Koukou Soccer Senshuken",
		"ActRaiser",
		"Mortal Kombat",
		"Pop'n TwinBee",
		"Secret of Mana",
		"Star Fox 2",
	}, titles)

	empty, err := repo.ListByConsole(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NotNil(t, empty)
}

func TestGetWithReleases(t *testing.T) {
	repo, db := seededRepo(t)
	ctx := context.Background()

	g, err := repo.GetWithReleases(ctx, gameID(t, db, "ActRaiser"))
	require.NoError(t, err)
	require.NotNil(t, g)
	require.Len(t, g.Releases, 2)
	assert.Equal(t, []string{"Europe"}, g.Releases[0].Regions)
	assert.Equal(t, []string{"USA"}, g.Releases[1].Regions)

	sf, err := repo.GetWithReleases(ctx, gameID(t, db, "Star Fox 2"))
	require.NoError(t, err)
	require.Len(t, sf.Releases, 1)
	rel := sf.Releases[0]
	assert.Equal(t, models.ReleaseTypeBeta, rel.Type)
	assert.Equal(t, "beta", rel.TypeName)
	assert.Equal(t, "1994-05-13", rel.TypeMisc)
	assert.Equal(t, 0, rel.Revision)
	assert.Nil(t, rel.ParentID)

	missing, err := repo.GetWithReleases(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGamesWithReleases(t *testing.T) {
	repo, _ := seededRepo(t)

	games, err := repo.GamesWithReleases(context.Background(), snesID)
	require.NoError(t, err)
	require.Len(t, games, 6)

	releases, roms := 0, 0
	for _, g := range games {
		releases += len(g.Releases)
		for _, r := range g.Releases {
			roms += len(r.Roms)
		}
	}
	assert.Equal(t, 7, releases)
	assert.Equal(t, 8, roms)
}

func TestRomsForRelease(t *testing.T) {
	repo, db := seededRepo(t)
	ctx := context.Background()

	mk, err := repo.GetWithReleases(ctx, gameID(t, db, "Mortal Kombat"))
	require.NoError(t, err)
	require.Len(t, mk.Releases, 1)

	roms, err := repo.RomsForRelease(ctx, mk.Releases[0].ID)
	require.NoError(t, err)
	require.Len(t, roms, 2)
	assert.Equal(t, "Mortal Kombat (Europe) (Rev 1) (Patch ROM).bin", roms[0].Title)
	assert.Equal(t, int64(32768), roms[0].Size)

	none, err := repo.RomsForRelease(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRomsForConsole(t *testing.T) {
	repo, _ := seededRepo(t)

	roms, err := repo.RomsForConsole(context.Background(), snesID)
	require.NoError(t, err)
	assert.Len(t, roms, 8)
}
