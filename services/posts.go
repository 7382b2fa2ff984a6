package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"community/db"
	"community/models"
	"community/store"

	"gorm.io/gorm"
)

type PostService struct {
	profiles *ProfileService
}

func NewPostService() *PostService {
	return &PostService{
		profiles: NewProfileService(),
	}
}

// CreatePost создает новый пост от имени authorID.
// Никнейм автора снапшотится в сам пост, created_at назначает хранилище.
func (ps *PostService) CreatePost(ctx context.Context, authorID int64, title, content, imageBase64 string) (*models.Post, error) {
	if authorID <= 0 {
		return nil, fmt.Errorf("%w: authentication required", store.ErrAuth)
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", store.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content is required", store.ErrValidation)
	}

	post := &models.Post{
		Title:          title,
		Content:        content,
		ImageBase64:    imageBase64,
		AuthorID:       authorID,
		AuthorNickname: ps.profiles.ResolveNickname(ctx, authorID),
	}

	if err := db.GetWriteDB(ctx).Create(post).Error; err != nil {
		log.Printf("ERROR: Failed to create post in DB: %v", err)
		return nil, fmt.Errorf("%w: create post: %v", store.ErrStore, err)
	}

	ps.publishChange(ctx, post.ID, store.ActionCreate)
	return post, nil
}

// UpdatePost изменяет title/content/imageBase64 существующего поста.
// Авторизация проверяется до любого мутирующего обращения к хранилищу;
// author_id, author_nickname и created_at не трогаются.
func (ps *PostService) UpdatePost(ctx context.Context, postID, editorID int64, title, content, imageBase64 string) error {
	if editorID <= 0 {
		return fmt.Errorf("%w: authentication required", store.ErrAuth)
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", store.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", store.ErrValidation)
	}

	post, err := ps.GetPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != editorID {
		return fmt.Errorf("%w: only the author can edit post %d", store.ErrAuth, postID)
	}

	updates := map[string]interface{}{
		"title":        title,
		"content":      content,
		"image_base64": imageBase64,
	}
	if err := db.GetWriteDB(ctx).Model(&models.Post{}).Where("id = ?", postID).Updates(updates).Error; err != nil {
		log.Printf("ERROR: Failed to update post %d: %v", postID, err)
		return fmt.Errorf("%w: update post: %v", store.ErrStore, err)
	}

	ps.publishChange(ctx, postID, store.ActionUpdate)
	return nil
}

// GetPost возвращает пост по ID
func (ps *PostService) GetPost(ctx context.Context, postID int64) (*models.Post, error) {
	var post models.Post
	err := db.GetReadOnlyDB(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: post %d", store.ErrNotFound, postID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get post: %v", store.ErrStore, err)
	}
	return &post, nil
}

// publishChange уведомляет подписчиков и ставит задачу обновления ленты
func (ps *PostService) publishChange(ctx context.Context, postID int64, action string) {
	store.Hub.Publish(store.Change{
		Collection: store.CollectionPosts,
		PostID:     postID,
		Action:     action,
	})

	if QueueServiceInstance != nil && RedisClient != nil {
		go QueueServiceInstance.EnqueueFeedRefresh(context.Background(), FeedRefreshTask{
			PostID: postID,
			Action: action,
		})
	} else {
		// Fallback - обновляем кеш и рассылаем событие синхронно, если очередь не работает
		go refreshFeedDirect(context.Background(), postID, action)
	}
}
