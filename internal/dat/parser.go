// Package dat parses DAT catalog files: a <header> naming the console,
// followed by <game> elements carrying optional <release region="..."> tags
// and one or more <rom> images.
//
// The markup is not required to be well-formed XML. The scanner only looks
// for the tags it needs and fails the whole file on the first malformed one.
package dat

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"romhub/pkg/models"
)

// File is a parsed catalog before aggregation.
type File struct {
	Header   Header
	Releases []Release
}

type Parser struct {
	logger *log.Logger
}

func NewParser(logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.Default()
	}
	return &Parser{logger: logger}
}

func (p *Parser) ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dat: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

func (p *Parser) Parse(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read dat: %w", err)
	}
	return p.ParseString(string(b))
}

func (p *Parser) ParseString(src string) (*File, error) {
	c := newCursor(src)

	header, err := c.header()
	if err != nil {
		return nil, err
	}

	var releases []Release
	for {
		rel, ok, err := p.entry(c)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		releases = append(releases, rel)
	}
	if len(releases) == 0 {
		return nil, malformed(c.pos, "no <game> entries")
	}

	return &File{Header: header, Releases: releases}, nil
}

// entry parses the next <game> element. Its body runs until the next <game>
// opening or the end of input.
func (p *Parser) entry(c *cursor) (Release, bool, error) {
	at, ok := c.seek("game")
	if !ok {
		return Release{}, false, nil
	}
	attrs, err := c.attributes()
	if err != nil {
		return Release{}, false, err
	}

	body := c.bounded(c.find("game"))
	c.pos = body.end

	regions, err := p.releaseRegions(body.bounded(body.find("rom")))
	if err != nil {
		return Release{}, false, err
	}

	var roms []Attrs
	for {
		if _, ok := body.seek("rom"); !ok {
			break
		}
		rom, err := body.attributes()
		if err != nil {
			return Release{}, false, err
		}
		roms = append(roms, rom)
	}

	rel, err := BuildRelease(attrs, regions, roms)
	if err != nil {
		detail := fmt.Sprintf("game %q", attrs["name"])
		if errors.Is(err, ErrMissingTitle) {
			detail = "game without a name attribute"
		}
		return Release{}, false, &ParseError{Kind: err, Offset: at, Detail: detail}
	}
	return rel, true, nil
}

// releaseRegions collects the region of every <release> tag in c. Tags with
// no region attribute are skipped; unknown codes are logged and read as World.
func (p *Parser) releaseRegions(c *cursor) ([]models.Region, error) {
	var regions []models.Region
	for {
		if _, ok := c.seek("release"); !ok {
			return regions, nil
		}
		attrs, err := c.attributes()
		if err != nil {
			return nil, err
		}
		code, ok := attrs["region"]
		if !ok {
			continue
		}
		region, known := RegionForCode(code)
		if !known {
			p.logger.Printf("[dat] unknown region code %q on %q, using %s", code, attrs["name"], region)
		}
		regions = append(regions, region)
	}
}
