package models

import "time"

// User is the public profile shown next to questions and answers.
// Rows are upserted from verified token claims; credentials live with the identity provider.
type User struct {
	ID        int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Username  string    `gorm:"not null;index" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
