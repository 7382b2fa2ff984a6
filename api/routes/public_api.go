package routes

import (
	"community/api/handlers"
	"community/api/middleware"

	"github.com/gin-gonic/gin"
)

func PublicApi(router *gin.Engine) *gin.RouterGroup {
	publicEndpoints := router.Group("/api/v1/")
	{
		publicEndpoints.POST("auth/register", handlers.Register)
		publicEndpoints.POST("auth/login", handlers.Login)
	}

	authorized := router.Group("/api/v1/", middleware.AuthMiddleware())
	{
		authorized.POST("auth/logout", handlers.Logout)

		// Посты и лента
		authorized.GET("feed", handlers.GetFeed)
		authorized.POST("posts/create", handlers.CreatePost)
		authorized.GET("posts/:post_id", handlers.GetPost)
		authorized.POST("posts/update/:post_id", handlers.UpdatePost)
		authorized.DELETE("posts/:post_id", handlers.DeletePost)

		// Комментарии
		authorized.POST("posts/:post_id/comments", handlers.AddComment)
		authorized.GET("posts/:post_id/comments", handlers.ListComments)

		// Живая лента
		authorized.GET("ws/feed", handlers.WSFeedHandler)

		// Админские эндпоинты
		authorized.POST("admin/feed/rebuild", handlers.RebuildFeed)
		authorized.GET("admin/queue/stats", handlers.GetQueueStats)
	}
	return publicEndpoints
}
