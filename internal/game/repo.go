package game

import (
	"context"
	"database/sql"
	"fmt"

	"romhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Filters for the release/rom loaders; both bind one argument.
const (
	byConsole = "g.console_id = ?"
	byGame    = "g.id = ?"
)

func (r *Repo) ListByConsole(ctx context.Context, consoleID int64) ([]models.Game, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, console_id
		FROM games
		WHERE console_id = ?
		ORDER BY title ASC
	`, consoleID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.Title, &g.ConsoleID); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// GamesWithReleases returns every game of the console with its releases,
// their region names and rom images.
func (r *Repo) GamesWithReleases(ctx context.Context, consoleID int64) ([]models.GameWithReleases, error) {
	games, err := r.ListByConsole(ctx, consoleID)
	if err != nil {
		return nil, err
	}
	releases, err := r.releases(ctx, byConsole, consoleID)
	if err != nil {
		return nil, err
	}

	out := make([]models.GameWithReleases, 0, len(games))
	for _, g := range games {
		out = append(out, models.GameWithReleases{Game: g, Releases: orEmpty(releases[g.ID])})
	}
	return out, nil
}

func (r *Repo) GetWithReleases(ctx context.Context, gameID int64) (*models.GameWithReleases, error) {
	var g models.Game
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, title, console_id FROM games WHERE id = ?
	`, gameID).Scan(&g.ID, &g.Title, &g.ConsoleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get game: %w", err)
	}

	releases, err := r.releases(ctx, byGame, gameID)
	if err != nil {
		return nil, err
	}
	return &models.GameWithReleases{Game: g, Releases: orEmpty(releases[g.ID])}, nil
}

func (r *Repo) RomsForRelease(ctx context.Context, releaseID int64) ([]models.Rom, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, md5, crc, size, release_id
		FROM roms
		WHERE release_id = ?
		ORDER BY title ASC
	`, releaseID)
	if err != nil {
		return nil, fmt.Errorf("list release roms: %w", err)
	}
	defer rows.Close()
	return scanRoms(rows)
}

func (r *Repo) RomsForConsole(ctx context.Context, consoleID int64) ([]models.Rom, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT rm.id, rm.title, rm.md5, rm.crc, rm.size, rm.release_id
		FROM roms rm
		JOIN releases r ON r.id = rm.release_id
		JOIN games g ON g.id = r.game_id
		WHERE g.console_id = ?
		ORDER BY rm.title ASC
	`, consoleID)
	if err != nil {
		return nil, fmt.Errorf("list console roms: %w", err)
	}
	defer rows.Close()
	return scanRoms(rows)
}

// releases loads releases matching filter grouped by game id.
func (r *Repo) releases(ctx context.Context, filter string, arg any) (map[int64][]models.ReleaseWithRoms, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT r.id, COALESCE(r.title, ''), r.game_id, r.revision, r.parent_id, r.type, r.type_misc
		FROM releases r
		JOIN games g ON g.id = r.game_id
		WHERE `+filter+`
		ORDER BY r.id ASC
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	var order []int64
	byID := make(map[int64]*models.ReleaseWithRoms)
	for rows.Next() {
		var (
			rel    models.ReleaseWithRoms
			parent sql.NullInt64
			typ    int
		)
		if err := rows.Scan(&rel.ID, &rel.Title, &rel.GameID, &rel.Revision, &parent, &typ, &rel.TypeMisc); err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		if parent.Valid {
			rel.ParentID = &parent.Int64
		}
		rel.Type = models.ReleaseType(typ)
		rel.TypeName = rel.Type.Slug()
		rel.Regions = []string{}
		rel.Roms = []models.Rom{}
		byID[rel.ID] = &rel
		order = append(order, rel.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	if len(order) == 0 {
		return map[int64][]models.ReleaseWithRoms{}, nil
	}

	if err := r.attachRegions(ctx, filter, arg, byID); err != nil {
		return nil, err
	}
	if err := r.attachRoms(ctx, filter, arg, byID); err != nil {
		return nil, err
	}

	out := make(map[int64][]models.ReleaseWithRoms)
	for _, id := range order {
		rel := byID[id]
		out[rel.GameID] = append(out[rel.GameID], *rel)
	}
	return out, nil
}

func (r *Repo) attachRegions(ctx context.Context, filter string, arg any, byID map[int64]*models.ReleaseWithRoms) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT rr.release_id, rg.name
		FROM release_regions rr
		JOIN regions rg ON rg.id = rr.region_id
		JOIN releases r ON r.id = rr.release_id
		JOIN games g ON g.id = r.game_id
		WHERE `+filter+`
		ORDER BY rr.release_id, rg.id
	`, arg)
	if err != nil {
		return fmt.Errorf("list release regions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			releaseID int64
			name      string
		)
		if err := rows.Scan(&releaseID, &name); err != nil {
			return fmt.Errorf("scan release region: %w", err)
		}
		if rel, ok := byID[releaseID]; ok {
			rel.Regions = append(rel.Regions, name)
		}
	}
	return rows.Err()
}

func (r *Repo) attachRoms(ctx context.Context, filter string, arg any, byID map[int64]*models.ReleaseWithRoms) error {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT rm.id, rm.title, rm.md5, rm.crc, rm.size, rm.release_id
		FROM roms rm
		JOIN releases r ON r.id = rm.release_id
		JOIN games g ON g.id = r.game_id
		WHERE `+filter+`
		ORDER BY rm.release_id, rm.title
	`, arg)
	if err != nil {
		return fmt.Errorf("list roms: %w", err)
	}
	defer rows.Close()

	roms, err := scanRoms(rows)
	if err != nil {
		return err
	}
	for _, rom := range roms {
		if rel, ok := byID[rom.ReleaseID]; ok {
			rel.Roms = append(rel.Roms, rom)
		}
	}
	return nil
}

func scanRoms(rows *sql.Rows) ([]models.Rom, error) {
	out := make([]models.Rom, 0)
	for rows.Next() {
		var rom models.Rom
		if err := rows.Scan(&rom.ID, &rom.Title, &rom.MD5, &rom.CRC, &rom.Size, &rom.ReleaseID); err != nil {
			return nil, fmt.Errorf("scan rom: %w", err)
		}
		out = append(out, rom)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func orEmpty(rs []models.ReleaseWithRoms) []models.ReleaseWithRoms {
	if rs == nil {
		return []models.ReleaseWithRoms{}
	}
	return rs
}
