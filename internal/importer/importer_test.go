package importer

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"romhub/internal/console"
	"romhub/internal/dat"
	"romhub/internal/sync"
	"romhub/pkg/database"
)

var samplePath = filepath.Join("..", "dat", "testdata", "sample.dat")

type recorder struct {
	events []sync.ImportEvent
}

func (r *recorder) BroadcastJSON(v any) {
	if ev, ok := v.(sync.ImportEvent); ok {
		r.events = append(r.events, ev)
	}
}

func newTestImporter(t *testing.T) (*Importer, *sql.DB, *recorder) {
	t.Helper()
	db, err := database.OpenMigrated(database.Config{Path: filepath.Join(t.TempDir(), "romhub.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	im := New(db, console.NewRepo(db), log.New(&bytes.Buffer{}, "", 0))
	rec := &recorder{}
	im.Events = rec
	return im, db, rec
}

type rowCounts map[string]int

func countRows(t *testing.T, db *sql.DB) rowCounts {
	t.Helper()
	out := rowCounts{}
	for _, table := range []string{"games", "releases", "release_regions", "roms"} {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		out[table] = n
	}
	return out
}

func TestImportFile(t *testing.T) {
	im, db, rec := newTestImporter(t)

	res, err := im.ImportFile(context.Background(), samplePath)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "Super Nintendo Entertainment System", res.Console.Name)
	assert.Equal(t, 6, res.Games)
	assert.Equal(t, 7, res.Releases)
	assert.Equal(t, 8, res.Roms)

	// Region links: '96 (JPN), MK (EUR), SoM (AUS, EUR), SF2 (JPN),
	// ActRaiser (EUR), actraiser (USA), Pop'n TwinBee (USA, EUR).
	assert.Equal(t, rowCounts{
		"games":           6,
		"releases":        7,
		"release_regions": 9,
		"roms":            8,
	}, countRows(t, db))

	require.Len(t, rec.events, 1)
	assert.Equal(t, sync.EventImportCompleted, rec.events[0].Type)
	assert.Equal(t, res.RunID, rec.events[0].RunID)
}

func TestImportIsIdempotent(t *testing.T) {
	im, db, _ := newTestImporter(t)
	ctx := context.Background()

	first, err := im.ImportFile(ctx, samplePath)
	require.NoError(t, err)
	before := countRows(t, db)

	second, err := im.ImportFile(ctx, samplePath)
	require.NoError(t, err)

	assert.Equal(t, before, countRows(t, db))
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestImportStoresExplicitRegions(t *testing.T) {
	im, db, _ := newTestImporter(t)
	_, err := im.ImportFile(context.Background(), samplePath)
	require.NoError(t, err)

	var (
		revision int
		hash     string
	)
	require.NoError(t, db.QueryRow(`
		SELECT revision, regions_hash FROM releases WHERE title = 'Secret of Mana'
	`).Scan(&revision, &hash))
	assert.Equal(t, 1, revision)
	assert.Equal(t, "3,5", hash)

	rows, err := db.Query(`
		SELECT rg.name
		FROM release_regions rr
		JOIN regions rg ON rg.id = rr.region_id
		JOIN releases r ON r.id = rr.release_id
		WHERE r.title = 'Secret of Mana'
		ORDER BY rg.name
	`)
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		require.NoError(t, rows.Scan(&n))
		names = append(names, n)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"Australia", "Europe"}, names)
}

func TestImportGroupsTitlesIgnoringCase(t *testing.T) {
	im, db, _ := newTestImporter(t)
	_, err := im.ImportFile(context.Background(), samplePath)
	require.NoError(t, err)

	var games, releases int
	require.NoError(t, db.QueryRow(`
		SELECT COUNT(DISTINCT g.id), COUNT(r.id)
		FROM games g JOIN releases r ON r.game_id = g.id
		WHERE lower(g.title) = 'actraiser'
	`).Scan(&games, &releases))
	assert.Equal(t, 1, games)
	assert.Equal(t, 2, releases)
}

func TestImportEmptyReleaseRollsBack(t *testing.T) {
	im, db, rec := newTestImporter(t)
	ctx := context.Background()

	_, err := im.ImportFile(ctx, samplePath)
	require.NoError(t, err)
	before := countRows(t, db)

	doc := `<datafile><header><name>Nintendo - Super Nintendo Entertainment System (x)</name></header>
		<game name="Brand New Game (USA)"><rom name="a.sfc" size="1" crc="1" md5="1"/></game>
		<game name="Broken Game (USA)"><description>no roms</description></game>
	</datafile>`
	_, err = im.Import(ctx, strings.NewReader(doc), "broken.dat")
	require.Error(t, err)
	assert.ErrorIs(t, err, dat.ErrEmptyReleaseImages)

	assert.Equal(t, before, countRows(t, db))
	require.Len(t, rec.events, 2)
	assert.Equal(t, sync.EventImportFailed, rec.events[1].Type)
	assert.Equal(t, "broken.dat", rec.events[1].Source)
}

func TestImportUnknownConsole(t *testing.T) {
	im, db, _ := newTestImporter(t)

	doc := `<datafile><header><name>Atari - Jaguar (x)</name></header>
		<game name="Tempest 2000 (World)"><rom name="t.j64" size="1" crc="1" md5="1"/></game>
	</datafile>`
	_, err := im.Import(context.Background(), strings.NewReader(doc), "jaguar.dat")
	require.Error(t, err)
	assert.ErrorIs(t, err, dat.ErrUnknownConsole)

	var unknown *dat.UnknownConsoleError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Jaguar", unknown.Name)

	assert.Equal(t, rowCounts{"games": 0, "releases": 0, "release_regions": 0, "roms": 0}, countRows(t, db))
}

func TestImportConsoleMatchIsCaseSensitive(t *testing.T) {
	im, _, _ := newTestImporter(t)

	doc := `<datafile><header><name>Nintendo - super nintendo entertainment system</name></header>
		<game name="X (USA)"><rom name="x.sfc" size="1" crc="1" md5="1"/></game>
	</datafile>`
	_, err := im.Import(context.Background(), strings.NewReader(doc), "lower.dat")
	assert.ErrorIs(t, err, dat.ErrUnknownConsole)
}

func TestImportMalformedMarkup(t *testing.T) {
	im, db, _ := newTestImporter(t)

	doc := `<datafile><header><name>Nintendo - Super Nintendo Entertainment System</name></header>
		<game name="Unterminated (USA)><rom name="x.sfc" size="1"/></game>`
	_, err := im.Import(context.Background(), strings.NewReader(doc), "bad.dat")
	require.Error(t, err)
	assert.ErrorIs(t, err, dat.ErrMalformedMarkup)

	var perr *dat.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Positive(t, perr.Offset)
	assert.Equal(t, 0, countRows(t, db)["games"])
}

func TestImportUpdatesChangedRelease(t *testing.T) {
	im, db, _ := newTestImporter(t)
	ctx := context.Background()

	v1 := `<datafile><header><name>Nintendo - Game Boy</name></header>
		<game name="Tetris (World)"><rom name="Tetris (World).gb" size="32768" crc="aa" md5="bb"/></game>
	</datafile>`
	v2 := `<datafile><header><name>Nintendo - Game Boy</name></header>
		<game name="Tetris (World) (Rev 1)"><rom name="Tetris (World) (Rev 1).gb" size="32768" crc="cc" md5="dd"/></game>
		<game name="Tetris (World)"><rom name="Tetris (World).gb" size="32768" crc="aa" md5="bb"/></game>
	</datafile>`

	_, err := im.Import(ctx, strings.NewReader(v1), "v1")
	require.NoError(t, err)
	_, err = im.Import(ctx, strings.NewReader(v2), "v2")
	require.NoError(t, err)

	counts := countRows(t, db)
	assert.Equal(t, 1, counts["games"])
	assert.Equal(t, 2, counts["releases"])
	assert.Equal(t, 2, counts["roms"])

	// The unchanged release now carries the insert id from the second run.
	var insertID int
	require.NoError(t, db.QueryRow(`
		SELECT insert_id FROM releases WHERE title = 'Tetris' AND revision = 0
	`).Scan(&insertID))
	assert.Equal(t, 1, insertID)
}

func TestStorageErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&StorageError{Op: "commit tx", Err: cause})

	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage: commit tx: disk full", err.Error())
}

func TestImportClosedDatabaseIsStorageError(t *testing.T) {
	im, db, _ := newTestImporter(t)
	require.NoError(t, db.Close())

	_, err := im.ImportFile(context.Background(), samplePath)
	assert.ErrorIs(t, err, ErrStorage)
}

func TestImportRollsBackOnWriteFailure(t *testing.T) {
	im, db, rec := newTestImporter(t)
	ctx := context.Background()

	_, err := im.ImportFile(ctx, samplePath)
	require.NoError(t, err)
	before := countRows(t, db)

	_, err = db.Exec(`
		CREATE TRIGGER fail_broken_rom BEFORE INSERT ON roms
		WHEN NEW.title = 'Broken.sfc'
		BEGIN SELECT RAISE(ABORT, 'boom'); END
	`)
	require.NoError(t, err)

	// Games, releases and region links are written before the failing rom.
	doc := `<datafile><header><name>Nintendo - Super Nintendo Entertainment System</name></header>
		<game name="Fresh Start (USA)"><rom name="Fresh Start (USA).sfc" size="1" crc="1" md5="1"/></game>
		<game name="Broken (Europe)"><rom name="Broken.sfc" size="2" crc="2" md5="2"/></game>
	</datafile>`
	_, err = im.Import(ctx, strings.NewReader(doc), "broken-write.dat")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "Broken.sfc")

	var serr *StorageError
	require.True(t, errors.As(err, &serr))
	assert.Contains(t, serr.Op, "upsert rom")

	assert.Equal(t, before, countRows(t, db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM games WHERE title IN ('Fresh Start', 'Broken')`).Scan(&n))
	assert.Zero(t, n)

	require.Len(t, rec.events, 2)
	assert.Equal(t, sync.EventImportFailed, rec.events[1].Type)
}
