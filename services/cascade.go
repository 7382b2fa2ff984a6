package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"community/db"
	"community/models"
	"community/store"

	"gorm.io/gorm"
)

// CascadeService атомарно удаляет пост вместе со всеми его комментариями.
// Хранилище нативного каскада по внешнему ключу не дает, поэтому
// целостность обеспечивается здесь.
type CascadeService struct {
	comments *CommentService
}

func NewCascadeService() *CascadeService {
	return &CascadeService{
		comments: NewCommentService(),
	}
}

// DeletePostCascade удаляет пост и его комментарии одной транзакцией.
// Авторизация перепроверяется здесь независимо от любых внешних проверок:
// это единственный необратимый путь.
//
// Известное окно: комментарий, записанный между перечислением и коммитом,
// в перечисление не попадет и переживет каскад сиротой. Поведение
// исходного приложения сохранено намеренно.
func (s *CascadeService) DeletePostCascade(ctx context.Context, postID, requesterID int64) error {
	if requesterID <= 0 {
		return fmt.Errorf("%w: authentication required", store.ErrAuth)
	}

	var post models.Post
	err := db.GetWriteDB(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: post %d", store.ErrNotFound, postID)
	}
	if err != nil {
		return fmt.Errorf("%w: get post: %v", store.ErrStore, err)
	}

	if post.AuthorID != requesterID {
		return fmt.Errorf("%w: only the author can delete post %d", store.ErrAuth, postID)
	}

	// Перечисляем комментарии до удаления
	var comments []models.Comment
	if err := db.GetWriteDB(ctx).Where("post_id = ?", postID).Find(&comments).Error; err != nil {
		return fmt.Errorf("%w: enumerate comments: %v", store.ErrStore, err)
	}

	// Атомарный мульти-delete: каждый перечисленный комментарий плюс сам пост
	err = db.GetWriteDB(ctx).Transaction(func(tx *gorm.DB) error {
		for _, c := range comments {
			if err := tx.Delete(&models.Comment{}, c.ID).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Post{}, postID).Error
	})
	if err != nil {
		log.Printf("ERROR: Cascade delete of post %d rejected: %v", postID, err)
		return fmt.Errorf("%w: cascade delete: %v", store.ErrStore, err)
	}

	log.Printf("DEBUG: Cascade deleted post %d with %d comments", postID, len(comments))
	s.comments.DropCommentCount(ctx, postID)

	store.Hub.Publish(store.Change{
		Collection: store.CollectionPosts,
		PostID:     postID,
		Action:     store.ActionDelete,
	})

	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedRefresh(context.Background(), FeedRefreshTask{
			PostID: postID,
			Action: store.ActionDelete,
		})
	} else {
		go refreshFeedDirect(context.Background(), postID, store.ActionDelete)
	}

	return nil
}
