package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"community/api/middleware"
	"community/services"

	"github.com/gin-gonic/gin"
)

var commentService = services.NewCommentService()

type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddComment добавляет комментарий к посту
func AddComment(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var req CommentRequest
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
	comment, err := commentService.AddComment(c.Request.Context(), postID, userID.(int64), req.Text)
	middleware.RecordContentOperation("add_comment", statusLabel(err), "community", time.Since(start), err)
	if err != nil {
		respondError(c, err)
		return
	}

	// Уведомляем автора поста о новом комментарии
	go notifyPostAuthor(postID, userID.(int64))

	c.JSON(http.StatusCreated, comment)
}

// ListComments возвращает комментарии поста по возрастанию created_at
func ListComments(c *gin.Context) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	views, err := commentService.ListCommentViews(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": views})
}

// notifyPostAuthor шлет автору поста WebSocket уведомление, если
// комментатор - не он сам
func notifyPostAuthor(postID, commenterID int64) {
	post, err := postService.GetPost(context.Background(), postID)
	if err != nil {
		return
	}
	if post.AuthorID == commenterID {
		return
	}
	_ = services.SendWsNotify(post.AuthorID, "comment",
		fmt.Sprintf("New comment on your post \"%s\"", post.Title))
}
