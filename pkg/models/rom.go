package models

type Rom struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	MD5       string `json:"md5"`
	CRC       string `json:"crc"`
	Size      int64  `json:"size"`
	ReleaseID int64  `json:"release_id"`
}
