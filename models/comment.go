package models

import "time"

// Comment - комментарий к посту. Живет только вместе с родительским постом:
// удаляется каскадом, по одному не удаляется и не редактируется.
type Comment struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    int64     `gorm:"index" json:"post_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  int64     `gorm:"index" json:"author_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// CommentView - комментарий с подставленным никнеймом автора
type CommentView struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Text      string    `json:"text"`
	AuthorID  int64     `json:"author_id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}
