package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"romhub/internal/console"
	"romhub/internal/game"
	"romhub/pkg/database"
	"romhub/pkg/models"
)

func main() {
	var (
		abbr = flag.String("console", "snes", "console abbreviation to export")
		out  = flag.String("out", "", "output CSV path (default data/<console>-roms.csv)")
	)
	flag.Parse()

	if *out == "" {
		*out = filepath.Join("data", *abbr+"-roms.csv")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.OpenMigrated(database.DefaultConfig())
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	cons, err := findConsole(ctx, console.NewRepo(db), *abbr)
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}

	games, err := game.NewRepo(db).GamesWithReleases(ctx, cons.ID)
	if err != nil {
		log.Fatalf("load games failed: %v", err)
	}

	n, err := exportRoms(*out, *cons, games)
	if err != nil {
		log.Fatalf("export roms failed: %v", err)
	}
	log.Printf("✅ exported %d roms of %s to %s", n, cons.Name, *out)
}

func findConsole(ctx context.Context, repo *console.Repo, abbr string) (*models.Console, error) {
	consoles, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range consoles {
		if strings.EqualFold(consoles[i].Abbreviation, abbr) {
			return &consoles[i], nil
		}
	}
	return nil, fmt.Errorf("unknown console %q", abbr)
}

func exportRoms(outPath string, cons models.Console, games []models.GameWithReleases) (int, error) {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return writeRoms(f, cons, games)
}

func writeRoms(dst io.Writer, cons models.Console, games []models.GameWithReleases) (int, error) {
	w := csv.NewWriter(dst)
	if err := w.Write([]string{
		"console", "game", "release", "revision", "type", "misc", "regions", "rom", "size", "crc", "md5",
	}); err != nil {
		return 0, err
	}

	n := 0
	for _, g := range games {
		for _, rel := range g.Releases {
			for _, rom := range rel.Roms {
				if err := w.Write([]string{
					cons.Abbreviation,
					g.Title,
					rel.Title,
					strconv.Itoa(rel.Revision),
					rel.TypeName,
					rel.TypeMisc,
					strings.Join(rel.Regions, "|"),
					rom.Title,
					strconv.FormatInt(rom.Size, 10),
					rom.CRC,
					rom.MD5,
				}); err != nil {
					return n, err
				}
				n++
			}
		}
	}

	w.Flush()
	return n, w.Error()
}
