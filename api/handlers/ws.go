package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"community/models"
	"community/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSFeedHandler - WebSocket endpoint живой ленты: при подключении и на
// каждом изменении контента клиент получает полную проекцию ленты
func WSFeedHandler(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	// Все записи идут через wsConn, сериализующий конкурентных писателей
	wsConn := services.GlobalWSConnManager.Add(userID.(int64), conn)
	defer services.GlobalWSConnManager.Remove(userID.(int64), wsConn)

	// Тестовое приветствие
	_ = wsConn.WriteMessage(websocket.TextMessage, []byte(`{"event":"connected","message":"WebSocket connected"}`))

	// Живая подписка на проекции ленты; освобождается на любом пути выхода
	sub := feedService.Watch(c.Request.Context())
	defer sub.Cancel()

	go func() {
		for items := range sub.C {
			msg := struct {
				Event string            `json:"event"`
				Items []models.FeedItem `json:"items"`
			}{
				Event: "feed_snapshot",
				Items: items,
			}
			data, err := json.Marshal(msg)
			if err != nil {
				log.Println("Failed to marshal feed snapshot:", err)
				continue
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			log.Println("WebSocket read error:", err)
			break
		}
	}
}
