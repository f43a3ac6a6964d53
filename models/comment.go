package models

import (
	"gorm.io/gorm"
)

// Comment 评论模型，属于一个集；UserID 为空时视为匿名评论
// ParentID 形成无限深度的回复树，按行懒加载，不做内存树结构
type Comment struct {
	gorm.Model
	EpisodeID   uint   `gorm:"not null;index" json:"episode_id"`
	UserID      *uint  `gorm:"index" json:"user_id"`
	Description string `gorm:"type:text;not null" json:"description"`
	ParentID    *uint  `gorm:"index" json:"parent_id"`
	User        *User  `json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

// AuthorName 返回评论作者名，作者不存在时返回匿名标记
func (c *Comment) AuthorName() string {
	if c.User == nil {
		return "Аноним"
	}
	return c.User.Name
}

// CommentCreateRequest 新增评论的请求结构体
type CommentCreateRequest struct {
	Description string `json:"description" binding:"required" example:"Отличная серия!"`
	ParentID    *uint  `json:"parent_id"`
}

// CommentResponse 评论响应结构体
type CommentResponse struct {
	ID          uint   `json:"id"`
	EpisodeID   uint   `json:"episode_id"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
	AuthorName  string `json:"author_name"`
	CreatedAt   string `json:"created_at"`
}
