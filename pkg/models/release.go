package models

type Release struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	GameID   int64       `json:"game_id"`
	Revision int         `json:"revision"`
	ParentID *int64      `json:"parent_id,omitempty"`
	Type     ReleaseType `json:"-"`
	TypeName string      `json:"type"`
	TypeMisc string      `json:"type_misc,omitempty"`
	Regions  []string    `json:"regions"`
}

type ReleaseWithRoms struct {
	Release
	Roms []Rom `json:"roms"`
}
