package models

import (
	"time"
)

// 评分的有效范围，与请求校验保持一致
const (
	VoteMin = 1
	VoteMax = 10
)

// SerialVote 用户对剧集的评分，(user_id, serial_id) 唯一，重复评分覆盖旧值
// 不使用软删除：评分要么存在要么不存在，没有第三种状态
type SerialVote struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"index:serials_votes_user_serial_IDX,unique;not null" json:"user_id"`
	SerialID  uint      `gorm:"index:serials_votes_user_serial_IDX,unique;not null" json:"serial_id"`
	Vote      int       `gorm:"not null;comment:评分 1-10" json:"vote"`
}

func (SerialVote) TableName() string {
	return "serials_votes"
}

// VoteRequest 评分请求结构体
type VoteRequest struct {
	Vote int `json:"vote" binding:"required" example:"8"`
}
