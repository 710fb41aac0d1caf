package models

type Console struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	Manufacturer string `json:"manufacturer"`
	InLibrary    bool   `json:"in_library"`
}

// ConsoleWithGames is the console -> games -> releases -> roms projection.
type ConsoleWithGames struct {
	Console
	Games []GameWithReleases `json:"games"`
}
