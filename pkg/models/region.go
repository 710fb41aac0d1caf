package models

import "strings"

// Region is the fixed region lookup. The numeric value is the regions.id
// row seeded by the schema and must never be renumbered.
type Region int

const (
	RegionWorld Region = iota
	RegionJapan
	RegionUSA
	RegionEurope
	RegionGermany
	RegionAustralia
	RegionSpain
	RegionFrance
	RegionSweden
	RegionItalia
	RegionScandinavia
)

var regionNames = [...]string{
	RegionWorld:       "World",
	RegionJapan:       "Japan",
	RegionUSA:         "USA",
	RegionEurope:      "Europe",
	RegionGermany:     "Germany",
	RegionAustralia:   "Australia",
	RegionSpain:       "Spain",
	RegionFrance:      "France",
	RegionSweden:      "Sweden",
	RegionItalia:      "Italia",
	RegionScandinavia: "Scandinavia",
}

// Regions lists every region in id order.
func Regions() []Region {
	out := make([]Region, len(regionNames))
	for i := range regionNames {
		out[i] = Region(i)
	}
	return out
}

func (r Region) String() string {
	if r < 0 || int(r) >= len(regionNames) {
		return "Unknown"
	}
	return regionNames[r]
}

// ParseRegion matches s case-insensitively against the region names.
func ParseRegion(s string) (Region, bool) {
	for i, name := range regionNames {
		if strings.EqualFold(name, s) {
			return Region(i), true
		}
	}
	return 0, false
}
