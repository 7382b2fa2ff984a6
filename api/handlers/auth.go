package handlers

import (
	"errors"
	"net/http"

	"community/services"
	"community/store"

	"github.com/gin-gonic/gin"
)

var identityService = services.NewIdentityService()

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(c *gin.Context) {
	var registerRequest RegisterRequest
	if err := c.ShouldBindJSON(&registerRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	userID, err := identityService.SignUp(c.Request.Context(),
		registerRequest.Email, registerRequest.Password, registerRequest.Nickname)
	if err != nil {
		if errors.Is(err, store.ErrAuth) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user_id": userID, "nickname": registerRequest.Nickname})
}

func Login(c *gin.Context) {
	var loginRequest LoginRequest
	if err := c.ShouldBindJSON(&loginRequest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	userID, token, err := identityService.SignIn(c.Request.Context(), loginRequest.Email, loginRequest.Password)
	if err != nil {
		if errors.Is(err, store.ErrAuth) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user_id": userID,
		"token":   token,
	})
}

func Logout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := identityService.SignOut(c.Request.Context(), userID.(int64)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}
