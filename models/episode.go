package models

import (
	"time"

	"gorm.io/gorm"
)

// Episode 集模型，属于一个季；SerialID 冗余存储以便统计和交集查询
type Episode struct {
	gorm.Model
	SeasonID uint       `gorm:"not null;index" json:"season_id"`
	SerialID uint       `gorm:"not null;index" json:"serial_id"`
	Number   int        `gorm:"not null;comment:集序号" json:"number"`
	AirDate  *time.Time `gorm:"comment:播出日期" json:"air_date,omitempty"`
}

func (Episode) TableName() string {
	return "episodes"
}

// EpisodeWatched 用户已观看的集，(user_id, episode_id) 唯一；不使用软删除
type EpisodeWatched struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"index:episodes_watched_user_episode_IDX,unique;not null" json:"user_id"`
	EpisodeID uint      `gorm:"index:episodes_watched_user_episode_IDX,unique;not null" json:"episode_id"`
}

func (EpisodeWatched) TableName() string {
	return "episodes_watched"
}
