package handlers

import (
	"errors"
	"net/http"

	"community/store"

	"github.com/gin-gonic/gin"
)

// respondError переводит ошибку доменного слоя в HTTP ответ.
// Клиент должен уметь отличить валидацию от авторизации, отсутствия
// документа и недоступности бэкенда.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: a required field is empty"})
	case errors.Is(err, store.ErrAuth):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not allowed to perform this action"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "The requested post or comment does not exist"})
	case errors.Is(err, store.ErrStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Backend is temporarily unavailable, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
