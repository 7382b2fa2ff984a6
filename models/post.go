package models

import "time"

// Post - модель поста сообщества. AuthorID и AuthorNickname фиксируются
// при создании и больше не меняются.
type Post struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title          string    `gorm:"size:255" json:"title"`
	Content        string    `gorm:"type:text" json:"content"`
	ImageBase64    string    `gorm:"type:text" json:"image_base64,omitempty"`
	AuthorID       int64     `gorm:"index" json:"author_id"`
	AuthorNickname string    `gorm:"size:60" json:"author_nickname"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// FeedItem - элемент ленты с дополнительной информацией (не хранится в БД)
type FeedItem struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	ImageBase64   string    `json:"image_base64,omitempty"`
	AuthorID      int64     `json:"author_id"`
	Nickname      string    `json:"nickname"`
	CommentsCount int64     `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// FeedResponse - ответ API для ленты
type FeedResponse struct {
	Items []FeedItem `json:"items"`
}
