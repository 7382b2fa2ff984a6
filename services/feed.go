package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"community/db"
	"community/models"
	"community/store"

	"github.com/go-redis/redis/v8"
)

const (
	FEED_CACHE_TTL   = 24 * time.Hour // TTL для кеша ленты
	MAX_FEED_SIZE    = 1000           // Максимальное количество постов в ленте
	FEED_KEY         = "community_feed"
	FEED_ITEM_PREFIX = "feed_item:"
)

type FeedService struct {
	profiles *ProfileService
}

func NewFeedService() *FeedService {
	return &FeedService{
		profiles: NewProfileService(),
	}
}

// BuildFeed возвращает текущую проекцию ленты: посты по убыванию created_at,
// каждый обогащен никнеймом автора и числом комментариев.
// Сначала пробуем кеш, при промахе строим из БД и кешируем.
func (fs *FeedService) BuildFeed(ctx context.Context) ([]models.FeedItem, error) {
	items, err := fs.getFeedFromCache(ctx)
	if err == nil && len(items) > 0 {
		return items, nil
	}

	items, err = fs.buildFeedFromDB(ctx)
	if err != nil {
		return nil, err
	}

	go fs.cacheFeed(context.Background(), items)
	return items, nil
}

// buildFeedFromDB делает полный пересчет ленты из базы.
// Никакого инкрементального диффинга: каждое изменение - полный пересчет.
func (fs *FeedService) buildFeedFromDB(ctx context.Context) ([]models.FeedItem, error) {
	var posts []models.Post
	err := db.GetReadOnlyDB(ctx).
		Order("created_at DESC, id DESC").
		Limit(MAX_FEED_SIZE).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: feed posts: %v", store.ErrStore, err)
	}

	if len(posts) == 0 {
		return []models.FeedItem{}, nil
	}

	// Число комментариев одним сгруппированным запросом
	postIDs := make([]int64, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}

	type commentCount struct {
		PostID int64
		Count  int64
	}
	var counts []commentCount
	err = db.GetReadOnlyDB(ctx).
		Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: comment counts: %v", store.ErrStore, err)
	}

	countByPost := make(map[int64]int64, len(counts))
	for _, c := range counts {
		countByPost[c.PostID] = c.Count
	}

	items := make([]models.FeedItem, 0, len(posts))
	for _, p := range posts {
		items = append(items, models.FeedItem{
			ID:            p.ID,
			Title:         p.Title,
			Content:       p.Content,
			ImageBase64:   p.ImageBase64,
			AuthorID:      p.AuthorID,
			Nickname:      fs.profiles.DisplayName(ctx, p.AuthorNickname, p.AuthorID),
			CommentsCount: countByPost[p.ID],
			CreatedAt:     p.CreatedAt,
		})
	}
	return items, nil
}

// feedCacheMember кодирует ID поста членом sorted set фиксированной ширины.
// Члены с равным score Redis сортирует лексикографически, и без выравнивания
// посты с одинаковым created_at теряли бы порядок id DESC при чтении из кеша
func feedCacheMember(postID int64) string {
	return fmt.Sprintf("%020d", postID)
}

// getFeedFromCache читает ленту из Redis (sorted set + элементы по ключам)
func (fs *FeedService) getFeedFromCache(ctx context.Context) ([]models.FeedItem, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis not available")
	}

	postIDs, err := RedisClient.ZRevRange(ctx, FEED_KEY, 0, MAX_FEED_SIZE-1).Result()
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return []models.FeedItem{}, nil
	}

	pipe := RedisClient.Pipeline()
	cmds := make([]*redis.StringCmd, len(postIDs))
	for i, postID := range postIDs {
		cmds[i] = pipe.Get(ctx, FEED_ITEM_PREFIX+postID)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	var items []models.FeedItem
	for _, cmd := range cmds {
		val, err := cmd.Result()
		if err != nil {
			continue
		}
		var item models.FeedItem
		if err := json.Unmarshal([]byte(val), &item); err == nil {
			items = append(items, item)
		}
	}
	return items, nil
}

// cacheFeed кеширует проекцию ленты в Redis
func (fs *FeedService) cacheFeed(ctx context.Context, items []models.FeedItem) {
	if len(items) == 0 || RedisClient == nil {
		return
	}

	pipe := RedisClient.Pipeline()
	pipe.Del(ctx, FEED_KEY)

	for _, item := range items {
		member := feedCacheMember(item.ID)
		pipe.ZAdd(ctx, FEED_KEY, &redis.Z{
			Score:  float64(item.CreatedAt.UnixNano()),
			Member: member,
		})

		itemData, err := json.Marshal(item)
		if err != nil {
			log.Printf("ERROR: Failed to marshal feed item %d: %v", item.ID, err)
			return
		}
		pipe.Set(ctx, FEED_ITEM_PREFIX+member, itemData, FEED_CACHE_TTL)
	}

	pipe.ZRemRangeByRank(ctx, FEED_KEY, 0, -MAX_FEED_SIZE-1)
	pipe.Expire(ctx, FEED_KEY, FEED_CACHE_TTL)
	pipe.Exec(ctx)
}

// InvalidateFeedCache сбрасывает кеш ленты
func (fs *FeedService) InvalidateFeedCache(ctx context.Context) error {
	if RedisClient == nil {
		return fmt.Errorf("redis not available")
	}
	return RedisClient.Del(ctx, FEED_KEY).Err()
}

// RebuildFeedCache перестраивает кеш ленты из БД
func (fs *FeedService) RebuildFeedCache(ctx context.Context) error {
	items, err := fs.buildFeedFromDB(ctx)
	if err != nil {
		return err
	}
	if RedisClient != nil {
		RedisClient.Del(ctx, FEED_KEY)
		fs.cacheFeed(ctx, items)
	}
	return nil
}

// FeedSubscription - живая последовательность проекций ленты
type FeedSubscription struct {
	C      chan []models.FeedItem
	inner  *store.Subscription
	once   sync.Once
	cancel context.CancelFunc
}

// Cancel освобождает подписку; идемпотентен
func (s *FeedSubscription) Cancel() {
	s.once.Do(func() {
		s.cancel()
		s.inner.Cancel()
	})
}

// Watch выдает свежую проекцию ленты при подписке и затем на каждом
// изменении постов или комментариев
func (fs *FeedService) Watch(ctx context.Context) *FeedSubscription {
	watchCtx, cancel := context.WithCancel(ctx)
	sub := &FeedSubscription{
		C:      make(chan []models.FeedItem, 8),
		inner:  store.Hub.Subscribe(),
		cancel: cancel,
	}

	go func() {
		defer close(sub.C)

		emit := func() {
			items, err := fs.buildFeedFromDB(watchCtx)
			if err != nil {
				log.Printf("ERROR: Failed to project feed: %v", err)
				return
			}
			select {
			case sub.C <- items:
			default:
				log.Printf("DEBUG: feed watcher is slow, dropping snapshot")
			}
		}

		emit()
		for {
			select {
			case <-watchCtx.Done():
				return
			case _, ok := <-sub.inner.C:
				if !ok {
					return
				}
				emit()
			}
		}
	}()

	return sub
}

// refreshFeedDirect - синхронный фолбэк, когда очередь недоступна:
// перестраивает кеш и рассылает событие подключенным клиентам
func refreshFeedDirect(ctx context.Context, postID int64, action string) {
	fs := NewFeedService()
	if RedisClient != nil {
		if err := fs.RebuildFeedCache(ctx); err != nil {
			log.Printf("ERROR: Failed to rebuild feed cache for post %d: %v", postID, err)
		}
	}

	event := ContentEvent{
		Event:  "feed_changed",
		PostID: postID,
		Action: action,
	}
	if err := PublishContentEvent(ctx, event); err != nil {
		log.Printf("DEBUG: RabbitMQ unavailable, broadcasting directly: %v", err)
		broadcastContentEvent(event)
	}
}
