package domain

import "time"

// Upload records an issued attachment slot. Any chat message of type
// image, audio or file may carry its URL as the body.
type Upload struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      int64     `gorm:"not null;index" json:"user_id"`
	ObjectKey   string    `gorm:"not null;uniqueIndex" json:"object_key"`
	URL         string    `gorm:"not null" json:"url"`
	ContentType string    `gorm:"not null" json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Upload) TableName() string { return "uploads" }
