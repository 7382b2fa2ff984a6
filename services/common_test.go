package services

import (
	"fmt"
	"testing"
	"time"

	"community/db"
	"community/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB инициализирует тестовую базу данных SQLite в памяти.
// Один коннект в пуле, иначе каждый коннект получит свою in-memory базу.
func setupTestDB(t *testing.T) {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = database.AutoMigrate(&models.User{}, &models.UserTokens{}, &models.Post{}, &models.Comment{})
	require.NoError(t, err)

	db.ORM = database
}

// createTestUser создает тестового пользователя с заданным никнеймом
func createTestUser(t *testing.T, nickname string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    fmt.Sprintf("%s_%s", nickname, gofakeit.Email()),
		Nickname: nickname,
		Password: "irrelevant",
	}
	require.NoError(t, db.ORM.Create(user).Error)
	return user
}

func receiveCommentSnapshot(t *testing.T, sub *CommentSubscription) []models.CommentView {
	t.Helper()
	select {
	case views, ok := <-sub.C:
		require.True(t, ok, "subscription closed unexpectedly")
		return views
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for comment snapshot")
		return nil
	}
}

func receiveFeedSnapshot(t *testing.T, sub *FeedSubscription) []models.FeedItem {
	t.Helper()
	select {
	case items, ok := <-sub.C:
		require.True(t, ok, "subscription closed unexpectedly")
		return items
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for feed snapshot")
		return nil
	}
}
