package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Rating values for feedback records.
const (
	RatingUp   = "up"
	RatingDown = "down"
)

// Feedback is a single thumbs-up/down judgement on a generated post,
// together with the generation context needed to learn from it.
type Feedback struct {
	ID        string
	UserID    string
	PostID    string
	Rating    string // "up" or "down"
	Note      string
	PostType  string
	Tone      string
	Keywords  []string
	Hashtags  []string
	CreatedAt time.Time
}

// PostRecord is one generated post kept for repetition scoring and
// rotation-diversity tracking.
type PostRecord struct {
	ID        string
	UserID    string
	PostType  string
	Tone      string
	PostText  string
	Bucket    string
	CreatedAt time.Time
}

// ProfileDocument is an uploaded business document whose extracted text is
// available to prompt builders as background context.
type ProfileDocument struct {
	ID         string
	UserID     string
	Filename   string
	FileType   string
	Content    string
	UploadedAt time.Time
}
