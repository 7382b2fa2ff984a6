package handlers

import (
	"net/http"
	"strconv"
	"time"

	"community/api/middleware"
	"community/services"

	"github.com/gin-gonic/gin"
)

var (
	postService    = services.NewPostService()
	cascadeService = services.NewCascadeService()
	feedService    = services.NewFeedService()
)

type PostRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	ImageBase64 string `json:"image_base64"`
}

// CreatePost создает новый пост
func CreatePost(c *gin.Context) {
	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Получаем ID пользователя из контекста (предполагается, что он установлен middleware)
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start := time.Now()
	post, err := postService.CreatePost(c.Request.Context(), userID.(int64), req.Title, req.Content, req.ImageBase64)
	middleware.RecordContentOperation("create_post", statusLabel(err), "community", time.Since(start), err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost изменяет существующий пост (только его автор)
func UpdatePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start := time.Now()
	err = postService.UpdatePost(c.Request.Context(), postID, userID.(int64), req.Title, req.Content, req.ImageBase64)
	middleware.RecordContentOperation("update_post", statusLabel(err), "community", time.Since(start), err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully"})
}

// GetPost возвращает один пост
func GetPost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, err := postService.GetPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost удаляет пост вместе со всеми комментариями
func DeletePost(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	start := time.Now()
	err = cascadeService.DeletePostCascade(c.Request.Context(), postID, userID.(int64))
	middleware.RecordContentOperation("delete_post", statusLabel(err), "community", time.Since(start), err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// GetFeed возвращает текущую проекцию ленты
func GetFeed(c *gin.Context) {
	items, err := feedService.BuildFeed(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// RebuildFeed перестраивает кеш ленты из БД (админский эндпоинт)
func RebuildFeed(c *gin.Context) {
	if err := feedService.RebuildFeedCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feed rebuilt successfully"})
}

// GetQueueStats возвращает статистику очереди (админский эндпоинт)
func GetQueueStats(c *gin.Context) {
	if services.QueueServiceInstance == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Queue service not available"})
		return
	}

	queueLength, err := services.QueueServiceInstance.GetQueueStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get queue stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue_length": queueLength,
		"workers":      services.QUEUE_WORKER_COUNT,
	})
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
