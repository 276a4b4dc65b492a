package models

import (
	"time"

	"gorm.io/datatypes"
)

type Question struct {
	ID          int                         `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `gorm:"type:text;not null" json:"description"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Votes       int                         `gorm:"not null;default:0" json:"votes"`
	ViewCount   int                         `gorm:"not null;default:0" json:"view_count"`
	AuthorID    int                         `gorm:"not null;index" json:"author_id"`
	Author      User                        `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// QuestionStats holds the per-question aggregates derived from its answers.
type QuestionStats struct {
	QuestionID        int
	AnswerCount       int
	HasAcceptedAnswer bool
}

type CreateQuestionRequest struct {
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Tags        []string `json:"tags" binding:"required"`
}

type QuestionView struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Author            string    `json:"author"`
	AuthorID          int       `json:"author_id"`
	Tags              []string  `json:"tags"`
	Votes             int       `json:"votes"`
	AnswerCount       int       `json:"answer_count"`
	ViewCount         int       `json:"view_count"`
	HasAcceptedAnswer bool      `json:"has_accepted_answer"`
	CreatedAt         time.Time `json:"created_at"`
}

type QuestionDetail struct {
	Question QuestionView `json:"question"`
	Answers  []AnswerView `json:"answers"`
}
