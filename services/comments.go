package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"community/db"
	"community/models"
	"community/store"

	"github.com/go-redis/redis/v8"
)

const (
	COMMENT_COUNT_PREFIX = "post_comments:" // Префикс ключей счетчиков комментариев
	COMMENT_COUNT_TTL    = 24 * time.Hour
)

type CommentService struct {
	profiles *ProfileService
}

func NewCommentService() *CommentService {
	return &CommentService{
		profiles: NewProfileService(),
	}
}

// AddComment добавляет комментарий к посту. Существование родительского
// поста на момент записи не перепроверяется - как в исходном приложении.
func (cs *CommentService) AddComment(ctx context.Context, postID, authorID int64, text string) (*models.Comment, error) {
	if authorID <= 0 {
		return nil, fmt.Errorf("%w: authentication required", store.ErrAuth)
	}
	if postID <= 0 {
		return nil, fmt.Errorf("%w: post id is required", store.ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: comment text is required", store.ErrValidation)
	}

	comment := &models.Comment{
		PostID:   postID,
		Text:     text,
		AuthorID: authorID,
	}

	if err := db.GetWriteDB(ctx).Create(comment).Error; err != nil {
		log.Printf("ERROR: Failed to create comment for post %d: %v", postID, err)
		return nil, fmt.Errorf("%w: add comment: %v", store.ErrStore, err)
	}

	cs.bumpCommentCount(ctx, postID)

	store.Hub.Publish(store.Change{
		Collection: store.CollectionComments,
		PostID:     postID,
		Action:     store.ActionCreate,
	})

	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedRefresh(context.Background(), FeedRefreshTask{
			PostID: postID,
			Action: "comment_" + store.ActionCreate,
		})
	}

	return comment, nil
}

// ListComments возвращает комментарии поста по возрастанию created_at
func (cs *CommentService) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.GetReadOnlyDB(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list comments: %v", store.ErrStore, err)
	}
	return comments, nil
}

// ListCommentViews возвращает комментарии с живым поиском никнеймов авторов
func (cs *CommentService) ListCommentViews(ctx context.Context, postID int64) ([]models.CommentView, error) {
	comments, err := cs.ListComments(ctx, postID)
	if err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, models.CommentView{
			ID:        c.ID,
			PostID:    c.PostID,
			Text:      c.Text,
			AuthorID:  c.AuthorID,
			Nickname:  cs.profiles.ResolveNickname(ctx, c.AuthorID),
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

// CountComments возвращает число комментариев поста, через Redis кеш с
// фолбэком на БД
func (cs *CommentService) CountComments(ctx context.Context, postID int64) (int64, error) {
	key := fmt.Sprintf("%s%d", COMMENT_COUNT_PREFIX, postID)

	if RedisClient != nil {
		val, err := RedisClient.Get(ctx, key).Result()
		if err == nil {
			if count, perr := strconv.ParseInt(val, 10, 64); perr == nil {
				return count, nil
			}
		} else if err != redis.Nil {
			log.Printf("DEBUG: comment count cache read failed for post %d: %v", postID, err)
		}
	}

	var count int64
	err := db.GetReadOnlyDB(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count comments: %v", store.ErrStore, err)
	}

	if RedisClient != nil {
		RedisClient.Set(ctx, key, strconv.FormatInt(count, 10), COMMENT_COUNT_TTL)
	}
	return count, nil
}

// bumpCommentCount инкрементирует кешированный счетчик, если он есть
func (cs *CommentService) bumpCommentCount(ctx context.Context, postID int64) {
	if RedisClient == nil {
		return
	}
	key := fmt.Sprintf("%s%d", COMMENT_COUNT_PREFIX, postID)
	// Инкрементируем только существующий ключ, чтобы не завести счетчик с нуля
	if exists := RedisClient.Exists(ctx, key).Val(); exists > 0 {
		RedisClient.Incr(ctx, key)
	}
}

// DropCommentCount удаляет кешированный счетчик (вызывается каскадом)
func (cs *CommentService) DropCommentCount(ctx context.Context, postID int64) {
	if RedisClient == nil {
		return
	}
	RedisClient.Del(ctx, fmt.Sprintf("%s%d", COMMENT_COUNT_PREFIX, postID))
}

// CommentSubscription - живой список комментариев одного поста
type CommentSubscription struct {
	C      chan []models.CommentView
	inner  *store.Subscription
	once   sync.Once
	cancel context.CancelFunc
}

// Cancel освобождает подписку; повторные вызовы безопасны
func (s *CommentSubscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.inner.Cancel()
	})
}

// WatchComments выдает полный упорядоченный список комментариев поста
// сразу при подписке и затем на каждом изменении коллекции комментариев
func (cs *CommentService) WatchComments(ctx context.Context, postID int64) *CommentSubscription {
	watchCtx, cancel := context.WithCancel(ctx)
	sub := &CommentSubscription{
		C:      make(chan []models.CommentView, 8),
		inner:  store.Hub.Subscribe(),
		cancel: cancel,
	}

	go func() {
		defer close(sub.C)

		emit := func() {
			views, err := cs.ListCommentViews(watchCtx, postID)
			if err != nil {
				log.Printf("ERROR: Failed to project comments for post %d: %v", postID, err)
				return
			}
			select {
			case sub.C <- views:
			default:
				log.Printf("DEBUG: comment watcher for post %d is slow, dropping snapshot", postID)
			}
		}

		emit()
		for {
			select {
			case <-watchCtx.Done():
				return
			case change, ok := <-sub.inner.C:
				if !ok {
					return
				}
				if change.Collection != store.CollectionComments || change.PostID != postID {
					continue
				}
				emit()
			}
		}
	}()

	return sub
}
