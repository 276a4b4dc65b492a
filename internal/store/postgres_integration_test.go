package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/logger"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/store"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

func setupPostgres(t *testing.T) database.Service {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("qaforum"),
		postgres.WithUsername("qaforum"),
		postgres.WithPassword("qaforum"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.New(config.DatabaseConfig{
		URL:             connStr,
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Minute,
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db.GetDB()))
	return db
}

func TestPostgresConcurrentVotesMatchLedger(t *testing.T) {
	db := setupPostgres(t)
	gdb := db.GetDB()
	ctx := context.Background()

	require.NoError(t, gdb.Create(&models.User{ID: 1, Username: "author"}).Error)
	q := models.Question{Title: "race", Description: "race", Tags: []string{"go"}, AuthorID: 1}
	require.NoError(t, gdb.Omit("Author").Create(&q).Error)
	target := models.QuestionTarget(q.ID)

	svc := voting.NewService(voting.ServiceDeps{
		Store:        store.New(gdb),
		MaxAttempts:  10,
		RetryBackoff: 5 * time.Millisecond,
	})

	const voters = 20
	const rounds = 5
	var wg sync.WaitGroup
	for u := 0; u < voters; u++ {
		userID := 100 + u
		dir := models.Up
		if u%3 == 0 {
			dir = models.Down
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, err := svc.CastVote(ctx, userID, target, dir)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	var row struct{ Votes int }
	require.NoError(t, gdb.Model(&models.Question{}).Select("votes").Where("id = ?", q.ID).Scan(&row).Error)

	var votes []models.Vote
	require.NoError(t, gdb.Where("target_kind = ? AND target_id = ?", target.Kind, target.ID).Find(&votes).Error)
	ledger := 0
	for _, v := range votes {
		ledger += v.Direction.Weight()
	}
	assert.Equal(t, ledger, row.Votes)
	// an odd number of identical casts leaves every voter with one vote
	assert.Len(t, votes, voters)

	health := db.Health(ctx)
	assert.Equal(t, "up", health["status"])
}

func TestPostgresConcurrentSameUserToggles(t *testing.T) {
	db := setupPostgres(t)
	gdb := db.GetDB()
	ctx := context.Background()

	require.NoError(t, gdb.Create(&models.User{ID: 1, Username: "author"}).Error)
	q := models.Question{Title: "double click", Description: "tabs", Tags: []string{"go"}, AuthorID: 1}
	require.NoError(t, gdb.Omit("Author").Create(&q).Error)
	target := models.QuestionTarget(q.ID)

	svc := voting.NewService(voting.ServiceDeps{
		Store:        store.New(gdb),
		MaxAttempts:  10,
		RetryBackoff: 5 * time.Millisecond,
	})

	for _, n := range []int{7, 8} {
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.CastVote(ctx, 42, target, models.Up)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		var count int64
		require.NoError(t, gdb.Model(&models.Vote{}).Where("user_id = ?", 42).Count(&count).Error)
		var row struct{ Votes int }
		require.NoError(t, gdb.Model(&models.Question{}).Select("votes").Where("id = ?", q.ID).Scan(&row).Error)
		assert.Equal(t, int64(n%2), count, "after %d casts", n)
		assert.Equal(t, n%2, row.Votes, "after %d casts", n)

		// reset to no vote before the next batch
		if n%2 == 1 {
			_, err := svc.CastVote(ctx, 42, target, models.Up)
			require.NoError(t, err)
		}
	}
}

func TestPostgresSecondAcceptedAnswerRejectedByIndex(t *testing.T) {
	db := setupPostgres(t)
	gdb := db.GetDB()

	require.NoError(t, gdb.Create(&models.User{ID: 1, Username: "author"}).Error)
	q := models.Question{Title: "idx", Description: "idx", Tags: []string{"sql"}, AuthorID: 1}
	require.NoError(t, gdb.Omit("Author").Create(&q).Error)
	a1 := models.Answer{QuestionID: q.ID, Content: "one", AuthorID: 1, IsAccepted: true}
	require.NoError(t, gdb.Omit("Author").Create(&a1).Error)
	a2 := models.Answer{QuestionID: q.ID, Content: "two", AuthorID: 1, IsAccepted: true}
	err := gdb.Omit("Author").Create(&a2).Error
	require.Error(t, err)
	assert.True(t, voting.IsCode(store.MapError("test", err), voting.CodeConflict))
}
