package models

type Game struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	ConsoleID int64  `json:"console_id"`
}

type GameWithReleases struct {
	Game
	Releases []ReleaseWithRoms `json:"releases"`
}
