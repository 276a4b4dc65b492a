// Package storetest provides an in-memory SQLite store for tests.
package storetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/store"
)

// New opens a fresh, migrated in-memory database. A single connection is
// used so SQLite transactions run one at a time.
func New(t testing.TB) (*store.Store, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), logger.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return store.New(db), db
}

func SeedUser(t testing.TB, db *gorm.DB, id int, username string) models.User {
	t.Helper()
	u := models.User{ID: id, Username: username}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func SeedQuestion(t testing.TB, db *gorm.DB, authorID int, title string) models.Question {
	t.Helper()
	q := models.Question{
		Title:       title,
		Description: "description of " + title,
		Tags:        []string{"go"},
		AuthorID:    authorID,
	}
	require.NoError(t, db.Omit("Author").Create(&q).Error)
	return q
}

func SeedAnswer(t testing.TB, db *gorm.DB, questionID, authorID int, content string) models.Answer {
	t.Helper()
	a := models.Answer{QuestionID: questionID, Content: content, AuthorID: authorID}
	require.NoError(t, db.Omit("Author").Create(&a).Error)
	return a
}

// Score reads the cached votes column of a target.
func Score(t testing.TB, db *gorm.DB, target models.Target) int {
	t.Helper()
	var row struct{ Votes int }
	table := "questions"
	if target.Kind == models.TargetAnswer {
		table = "answers"
	}
	require.NoError(t, db.Table(table).Select("votes").Where("id = ?", target.ID).Scan(&row).Error)
	return row.Votes
}

// LedgerScore sums the vote rows of a target.
func LedgerScore(t testing.TB, db *gorm.DB, target models.Target) int {
	t.Helper()
	var votes []models.Vote
	require.NoError(t, db.Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).Find(&votes).Error)
	total := 0
	for _, v := range votes {
		total += v.Direction.Weight()
	}
	return total
}
