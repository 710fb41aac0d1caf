package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"romhub/internal/console"
	"romhub/internal/importer"
	"romhub/pkg/database"
)

// datFiles collects repeated -dat flags.
type datFiles []string

func (d *datFiles) String() string { return strings.Join(*d, ",") }

func (d *datFiles) Set(v string) error {
	*d = append(*d, v)
	return nil
}

func main() {
	var files datFiles
	flag.Var(&files, "dat", "DAT file to import (repeatable)")
	flag.Parse()
	files = append(files, flag.Args()...)

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: import-dat -dat <file> [-dat <file> ...]")
		os.Exit(2)
	}

	db, err := database.OpenMigrated(database.DefaultConfig())
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	defer db.Close()

	im := importer.New(db, console.NewRepo(db), log.Default())
	ctx := context.Background()

	// One file at a time; each import is its own transaction.
	failed := 0
	for _, path := range files {
		res, err := im.ImportFile(ctx, path)
		if err != nil {
			failed++
			continue
		}
		log.Printf("✅ %s -> %s: %d games, %d releases, %d regions, %d roms",
			path, res.Console.Abbreviation, res.Games, res.Releases, res.Regions, res.Roms)
	}

	if failed > 0 {
		log.Fatalf("%d of %d imports failed", failed, len(files))
	}
}
