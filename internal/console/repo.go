package console

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"romhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const selectConsole = `SELECT id, name, abbreviation, manufacturer, in_library FROM consoles`

// GetByName is an exact, case-sensitive lookup. It returns nil, nil when no
// console has that name.
func (r *Repo) GetByName(ctx context.Context, name string) (*models.Console, error) {
	c, err := scanConsole(r.DB.QueryRowContext(ctx, selectConsole+` WHERE name = ?`, name))
	if err != nil {
		return nil, fmt.Errorf("get console by name: %w", err)
	}
	return c, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Console, error) {
	c, err := scanConsole(r.DB.QueryRowContext(ctx, selectConsole+` WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("get console by id: %w", err)
	}
	return c, nil
}

// List returns every console in natural name order, so "Game Boy 9" comes
// before "Game Boy 10".
func (r *Repo) List(ctx context.Context) ([]models.Console, error) {
	rows, err := r.DB.QueryContext(ctx, selectConsole)
	if err != nil {
		return nil, fmt.Errorf("list consoles: %w", err)
	}
	defer rows.Close()

	var out []models.Console
	for rows.Next() {
		var c models.Console
		if err := rows.Scan(&c.ID, &c.Name, &c.Abbreviation, &c.Manufacturer, &c.InLibrary); err != nil {
			return nil, fmt.Errorf("scan console: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return natural.Less(out[i].Name, out[j].Name)
	})
	return out, nil
}

// Abbreviations returns every console abbreviation, sorted.
func (r *Repo) Abbreviations(ctx context.Context) ([]string, error) {
	consoles, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(consoles))
	for _, c := range consoles {
		out = append(out, c.Abbreviation)
	}
	sort.Strings(out)
	return out, nil
}

func (r *Repo) SetInLibrary(ctx context.Context, id int64, inLibrary bool) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE consoles SET in_library = ? WHERE id = ?`, inLibrary, id)
	if err != nil {
		return false, fmt.Errorf("set in_library: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func scanConsole(row *sql.Row) (*models.Console, error) {
	var c models.Console
	if err := row.Scan(&c.ID, &c.Name, &c.Abbreviation, &c.Manufacturer, &c.InLibrary); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
