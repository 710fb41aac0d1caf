package sync

import "time"

const (
	EventImportCompleted = "import.completed"
	EventImportFailed    = "import.failed"
)

type ImportEvent struct {
	Type     string    `json:"type"` // "import.completed" or "import.failed"
	RunID    string    `json:"run_id"`
	Source   string    `json:"source"`
	Console  string    `json:"console,omitempty"`
	Games    int       `json:"games,omitempty"`
	Releases int       `json:"releases,omitempty"`
	Roms     int       `json:"roms,omitempty"`
	Error    string    `json:"error,omitempty"`
	At       time.Time `json:"at"`
}
