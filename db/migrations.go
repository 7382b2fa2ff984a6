package db

import (
	"fmt"

	"gorm.io/gorm"
)

// CreateContentIndexes создает индексы под основные запросы контента:
// лента по убыванию created_at и комментарии поста по возрастанию created_at
func CreateContentIndexes(db *gorm.DB) error {
	indexes := []struct {
		name string
		sql  string
	}{
		{
			name: "idx_posts_created_at_id",
			sql:  `CREATE INDEX IF NOT EXISTS idx_posts_created_at_id ON posts (created_at DESC, id DESC);`,
		},
		{
			name: "idx_comments_post_id_created_at",
			sql:  `CREATE INDEX IF NOT EXISTS idx_comments_post_id_created_at ON comments (post_id, created_at);`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}
	return nil
}
