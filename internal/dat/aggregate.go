package dat

import (
	"strings"

	"romhub/pkg/models"
)

// Game groups the releases sharing a case-insensitive title. Its Title is
// the spelling of the first release seen.
type Game struct {
	Title string
}

// Key is the grouping identity of the game.
func (g Game) Key() string { return GameKey(g.Title) }

func GameKey(title string) string { return strings.ToLower(title) }

// Catalog is the aggregated form of one file, ready for the writer. Releases
// are stripped of their roms; roms and regions are re-joined by insert id.
type Catalog struct {
	// Games is in first-seen order.
	Games []Game
	// Releases is keyed by Game.Key().
	Releases map[string][]Release
	// Regions and Roms are keyed by Release.InsertID.
	Regions map[int][]models.Region
	Roms    map[int][]Rom
}

// ReleaseCount is the number of releases across all games.
func (c *Catalog) ReleaseCount() int {
	n := 0
	for _, rs := range c.Releases {
		n += len(rs)
	}
	return n
}

// RomCount is the number of rom images across all releases.
func (c *Catalog) RomCount() int {
	n := 0
	for _, roms := range c.Roms {
		n += len(roms)
	}
	return n
}

// Aggregate numbers releases by parse position and folds them into games.
func Aggregate(releases []Release) *Catalog {
	cat := &Catalog{
		Releases: make(map[string][]Release),
		Regions:  make(map[int][]models.Region, len(releases)),
		Roms:     make(map[int][]Rom, len(releases)),
	}

	for i, rel := range releases {
		rel.InsertID = i

		roms := make([]Rom, len(rel.Roms))
		for j, rom := range rel.Roms {
			rom.ReleaseInsertID = i
			roms[j] = rom
		}
		cat.Roms[i] = roms
		rel.Roms = nil

		cat.Regions[i] = append([]models.Region(nil), rel.Regions...)

		key := GameKey(rel.Title)
		if _, seen := cat.Releases[key]; !seen {
			cat.Games = append(cat.Games, Game{Title: rel.Title})
		}
		cat.Releases[key] = append(cat.Releases[key], rel)
	}
	return cat
}
