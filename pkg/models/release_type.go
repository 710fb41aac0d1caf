package models

import "strings"

// ReleaseType is stored as releases.type; values match the release_types rows.
type ReleaseType int

const (
	ReleaseTypeCustom ReleaseType = iota
	ReleaseTypeOfficial
	ReleaseTypeRomhack
	ReleaseTypeBeta
	ReleaseTypeBootleg
	ReleaseTypeSample
	ReleaseTypeVirtualConsole
)

var releaseTypeNames = [...]string{
	ReleaseTypeCustom:         "Custom",
	ReleaseTypeOfficial:       "Official",
	ReleaseTypeRomhack:        "Romhack",
	ReleaseTypeBeta:           "Beta",
	ReleaseTypeBootleg:        "Bootleg",
	ReleaseTypeSample:         "Sample",
	ReleaseTypeVirtualConsole: "VirtualConsole",
}

func (t ReleaseType) String() string {
	if t < 0 || int(t) >= len(releaseTypeNames) {
		return "Unknown"
	}
	return releaseTypeNames[t]
}

// Slug is the kebab-case name used in the release_types table and in JSON.
func (t ReleaseType) Slug() string {
	switch t {
	case ReleaseTypeVirtualConsole:
		return "virtual-console"
	default:
		return strings.ToLower(t.String())
	}
}

// ParseReleaseType matches s case-insensitively against the type names.
func ParseReleaseType(s string) (ReleaseType, bool) {
	for i, name := range releaseTypeNames {
		if strings.EqualFold(name, s) {
			return ReleaseType(i), true
		}
	}
	return 0, false
}
