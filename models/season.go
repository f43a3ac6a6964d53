package models

import (
	"gorm.io/gorm"
)

// Season 季模型，属于一个剧集
type Season struct {
	gorm.Model
	SerialID uint      `gorm:"not null;index;uniqueIndex:uniq_serial_season_number" json:"serial_id"`
	Number   int       `gorm:"not null;uniqueIndex:uniq_serial_season_number;comment:季序号" json:"number"`
	Title    string    `gorm:"type:varchar(255)" json:"title,omitempty"`
	Episodes []Episode `json:"episodes,omitempty"`
}

func (Season) TableName() string {
	return "seasons"
}
