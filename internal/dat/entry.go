package dat

import (
	"html"
	"sort"
	"strconv"
	"strings"

	"romhub/pkg/models"
)

// Rom is one file image of a release.
type Rom struct {
	Name string
	MD5  string
	CRC  string
	Size int64
	// ReleaseInsertID is set by Aggregate.
	ReleaseInsertID int
}

// Release is one parsed <game> element.
type Release struct {
	Title    string
	Regions  []models.Region
	Revision int
	Type     models.ReleaseType
	Misc     string
	// InsertID is the release's position in the file, assigned by Aggregate.
	InsertID int
	Roms     []Rom
}

// RegionsHash is the sorted, comma-joined region ids of the release.
func (r Release) RegionsHash() string {
	return RegionsHash(r.Regions)
}

// RegionsHash is order independent: ["EUR","AUS"] and ["AUS","EUR"] agree.
func RegionsHash(regions []models.Region) string {
	ids := make([]int, len(regions))
	for i, r := range regions {
		ids[i] = int(r)
	}
	sort.Ints(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

var regionCodes = map[string]models.Region{
	"USA": models.RegionUSA,
	"JPN": models.RegionJapan,
	"EUR": models.RegionEurope,
	"GER": models.RegionGermany,
	"AUS": models.RegionAustralia,
	"SPA": models.RegionSpain,
	"FRA": models.RegionFrance,
	"SWE": models.RegionSweden,
	"ITA": models.RegionItalia,
	"SCA": models.RegionScandinavia,
}

// RegionForCode maps a <release region="..."> code. Unknown codes report
// false and map to World.
func RegionForCode(code string) (models.Region, bool) {
	r, ok := regionCodes[code]
	if !ok {
		return models.RegionWorld, false
	}
	return r, true
}

// BuildRelease combines a game's attributes, the regions of its <release>
// tags and its <rom> attributes. Explicit regions win; the regions named in
// the title are used only when there are none. The returned error is one of
// ErrMissingTitle or ErrEmptyReleaseImages.
func BuildRelease(game Attrs, regions []models.Region, roms []Attrs) (Release, error) {
	raw, ok := game["name"]
	if !ok {
		return Release{}, ErrMissingTitle
	}
	if len(roms) == 0 {
		return Release{}, ErrEmptyReleaseImages
	}

	name := DecomposeName(raw)
	rel := Release{
		Title:    name.Title,
		Regions:  regions,
		Revision: name.Revision,
		Type:     name.Type,
		Misc:     name.Misc,
		Roms:     make([]Rom, 0, len(roms)),
	}
	if len(rel.Regions) == 0 {
		rel.Regions = name.Regions
	}

	for _, attrs := range roms {
		rel.Roms = append(rel.Roms, buildRom(attrs))
	}
	return rel, nil
}

func buildRom(attrs Attrs) Rom {
	size, err := strconv.ParseInt(attrs["size"], 10, 64)
	if err != nil {
		size = 0
	}
	return Rom{
		Name: html.UnescapeString(attrs["name"]),
		MD5:  html.UnescapeString(attrs["md5"]),
		CRC:  html.UnescapeString(attrs["crc"]),
		Size: size,
	}
}
