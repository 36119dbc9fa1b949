package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Title      string `json:"title"`
	Slug       string `json:"slug"`
	ExternalID string `json:"external_id,omitempty"` // App-side course id (bsa_course_id)
	Published  bool   `json:"published"`
}
