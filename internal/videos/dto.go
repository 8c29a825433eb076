package videos

import "time"

// VideoResponse is the outward-facing representation of a video.
type VideoResponse struct {
	VideoID    string    `json:"videoId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(v Video) VideoResponse {
	return VideoResponse{
		VideoID:    v.ID,
		FileName:   v.FileName,
		MimeType:   v.MimeType,
		SizeBytes:  v.SizeBytes,
		UploadedAt: v.CreatedAt,
	}
}
