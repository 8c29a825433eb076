package videos

import "time"

// Video represents an uploaded training video owned by a user.
type Video struct {
	ID              string
	UserID          string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	DurationSeconds float64
	CreatedAt       time.Time
}
