// Package importer runs a DAT file through parsing, console resolution,
// aggregation and the transactional writer.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"romhub/internal/dat"
	"romhub/internal/sync"
	"romhub/pkg/models"
)

// ConsoleLookup resolves the console declared in a DAT header by exact name.
// A nil console with a nil error means no such console.
type ConsoleLookup interface {
	GetByName(ctx context.Context, name string) (*models.Console, error)
}

// Publisher receives one event per finished import. *sync.Hub satisfies it.
type Publisher interface {
	BroadcastJSON(v any)
}

type Importer struct {
	DB       *sql.DB
	Consoles ConsoleLookup
	Parser   *dat.Parser
	// Events is optional.
	Events Publisher

	logger *log.Logger
}

func New(db *sql.DB, consoles ConsoleLookup, logger *log.Logger) *Importer {
	if logger == nil {
		logger = log.Default()
	}
	return &Importer{
		DB:       db,
		Consoles: consoles,
		Parser:   dat.NewParser(logger),
		logger:   logger,
	}
}

// Result describes one successful import. Counts are of parsed entities;
// entries that already existed are counted too.
type Result struct {
	RunID    string         `json:"run_id"`
	Source   string         `json:"source"`
	Console  models.Console `json:"console"`
	Games    int            `json:"games"`
	Releases int            `json:"releases"`
	Regions  int            `json:"regions"`
	Roms     int            `json:"roms"`
}

func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dat: %w", err)
	}
	defer f.Close()
	return im.Import(ctx, f, path)
}

// Import reads one whole DAT document from r. Nothing is written unless the
// document parses and its console is known; a write failure rolls back.
func (im *Importer) Import(ctx context.Context, r io.Reader, source string) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	res, err := im.run(ctx, r, source, runID)
	if err != nil {
		im.logger.Printf("[import] %s %s failed: %v", runID, source, err)
		im.publish(sync.ImportEvent{
			Type:   sync.EventImportFailed,
			RunID:  runID,
			Source: source,
			Error:  err.Error(),
			At:     time.Now().UTC(),
		})
		return nil, err
	}

	im.logger.Printf("[import] %s %s: %s, %d games, %d releases, %d roms in %s",
		runID, source, res.Console.Name, res.Games, res.Releases, res.Roms, time.Since(start).Round(time.Millisecond))
	im.publish(sync.ImportEvent{
		Type:     sync.EventImportCompleted,
		RunID:    runID,
		Source:   source,
		Console:  res.Console.Name,
		Games:    res.Games,
		Releases: res.Releases,
		Roms:     res.Roms,
		At:       time.Now().UTC(),
	})
	return res, nil
}

func (im *Importer) run(ctx context.Context, r io.Reader, source, runID string) (*Result, error) {
	file, err := im.Parser.Parse(r)
	if err != nil {
		return nil, err
	}

	name := file.Header.ConsoleName
	cons, err := im.Consoles.GetByName(ctx, name)
	if err != nil {
		return nil, &StorageError{Op: "lookup console", Err: err}
	}
	if cons == nil {
		return nil, &dat.UnknownConsoleError{Name: name}
	}

	cat := dat.Aggregate(file.Releases)
	n, err := write(ctx, im.DB, cons.ID, cat)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:    runID,
		Source:   source,
		Console:  *cons,
		Games:    n.Games,
		Releases: n.Releases,
		Regions:  n.Regions,
		Roms:     n.Roms,
	}, nil
}

func (im *Importer) publish(ev sync.ImportEvent) {
	if im.Events == nil {
		return
	}
	im.Events.BroadcastJSON(ev)
}
