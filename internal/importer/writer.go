package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"romhub/internal/dat"
	"romhub/pkg/models"
)

// ErrStorage is matched by every StorageError.
var ErrStorage = errors.New("storage error")

// StorageError wraps a failure inside the import transaction. The whole
// transaction has been rolled back by the time it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// counts is what one write touched, inserted or not.
type counts struct {
	Games    int
	Releases int
	Regions  int
	Roms     int
}

// write applies cat for the console in one transaction: games, then
// releases, then region links and roms.
func write(ctx context.Context, db *sql.DB, consoleID int64, cat *dat.Catalog) (counts, error) {
	var n counts

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return n, &StorageError{Op: "begin tx", Err: err}
	}
	defer tx.Rollback()

	gameIDs, err := upsertGames(ctx, tx, consoleID, cat.Games)
	if err != nil {
		return n, err
	}
	n.Games = len(gameIDs)

	releaseIDs, err := upsertReleases(ctx, tx, cat, gameIDs)
	if err != nil {
		return n, err
	}
	n.Releases = len(releaseIDs)

	if n.Regions, err = linkRegions(ctx, tx, cat.Regions, releaseIDs); err != nil {
		return n, err
	}
	if n.Roms, err = upsertRoms(ctx, tx, cat.Roms, releaseIDs); err != nil {
		return n, err
	}

	if err := tx.Commit(); err != nil {
		return counts{}, &StorageError{Op: "commit tx", Err: err}
	}
	return n, nil
}

// upsertGames returns game ids keyed by dat.Game.Key(). The conflict branch
// rewrites the title with itself so RETURNING yields the existing id.
func upsertGames(ctx context.Context, tx *sql.Tx, consoleID int64, games []dat.Game) (map[string]int64, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO games (title, console_id)
		VALUES (?, ?)
		ON CONFLICT(title, console_id) DO UPDATE SET
		  title = excluded.title
		RETURNING id
	`)
	if err != nil {
		return nil, &StorageError{Op: "prepare games", Err: err}
	}
	defer stmt.Close()

	ids := make(map[string]int64, len(games))
	for _, g := range games {
		var id int64
		if err := stmt.QueryRowContext(ctx, g.Title, consoleID).Scan(&id); err != nil {
			return nil, &StorageError{Op: fmt.Sprintf("upsert game %q", g.Title), Err: err}
		}
		ids[g.Key()] = id
	}
	return ids, nil
}

// upsertReleases returns release ids keyed by insert id. Identity columns
// are left alone on conflict; only revision, parent and insert_id move.
func upsertReleases(ctx context.Context, tx *sql.Tx, cat *dat.Catalog, gameIDs map[string]int64) (map[int]int64, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO releases (
		  title, game_id, revision, parent_id, type, type_misc,
		  insert_id, title_non_null, parent_id_non_null, regions_hash
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title_non_null, game_id, revision, parent_id_non_null, regions_hash, type, type_misc) DO UPDATE SET
		  revision = excluded.revision,
		  parent_id = excluded.parent_id,
		  insert_id = excluded.insert_id
		RETURNING id
	`)
	if err != nil {
		return nil, &StorageError{Op: "prepare releases", Err: err}
	}
	defer stmt.Close()

	ids := make(map[int]int64, cat.ReleaseCount())
	for _, g := range cat.Games {
		gameID, ok := gameIDs[g.Key()]
		if !ok {
			return nil, &StorageError{Op: "resolve game", Err: fmt.Errorf("no id for %q", g.Title)}
		}

		for _, rel := range cat.Releases[g.Key()] {
			// Parsed releases never carry a parent; NULL and 0 stand for none.
			var parentID sql.NullInt64
			var id int64
			err := stmt.QueryRowContext(ctx,
				rel.Title,
				gameID,
				rel.Revision,
				parentID,
				int(rel.Type),
				rel.Misc,
				rel.InsertID,
				rel.Title,
				parentID.Int64,
				dat.RegionsHash(cat.Regions[rel.InsertID]),
			).Scan(&id)
			if err != nil {
				return nil, &StorageError{Op: fmt.Sprintf("upsert release %q", rel.Title), Err: err}
			}
			ids[rel.InsertID] = id
		}
	}
	return ids, nil
}

// linkRegions walks insert ids in order so the link rows follow the file.
func linkRegions(ctx context.Context, tx *sql.Tx, regions map[int][]models.Region, releaseIDs map[int]int64) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO release_regions (release_id, region_id)
		VALUES (?, ?)
		ON CONFLICT(region_id, release_id) DO NOTHING
	`)
	if err != nil {
		return 0, &StorageError{Op: "prepare release regions", Err: err}
	}
	defer stmt.Close()

	n := 0
	for insertID := 0; insertID < len(releaseIDs); insertID++ {
		releaseID, ok := releaseIDs[insertID]
		if !ok {
			return n, &StorageError{Op: "resolve release", Err: fmt.Errorf("no id for insert id %d", insertID)}
		}
		for _, region := range regions[insertID] {
			if _, err := stmt.ExecContext(ctx, releaseID, int(region)); err != nil {
				return n, &StorageError{Op: fmt.Sprintf("link release %d to %s", releaseID, region), Err: err}
			}
			n++
		}
	}
	return n, nil
}

// upsertRoms keys roms on (title, release); a conflict only rewrites the
// title.
func upsertRoms(ctx context.Context, tx *sql.Tx, roms map[int][]dat.Rom, releaseIDs map[int]int64) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO roms (title, md5, crc, size, release_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(title, release_id) DO UPDATE SET
		  title = excluded.title
	`)
	if err != nil {
		return 0, &StorageError{Op: "prepare roms", Err: err}
	}
	defer stmt.Close()

	n := 0
	for insertID := 0; insertID < len(releaseIDs); insertID++ {
		releaseID := releaseIDs[insertID]
		for _, rom := range roms[insertID] {
			if _, err := stmt.ExecContext(ctx, rom.Name, rom.MD5, rom.CRC, rom.Size, releaseID); err != nil {
				return n, &StorageError{Op: fmt.Sprintf("upsert rom %q", rom.Name), Err: err}
			}
			n++
		}
	}
	return n, nil
}
