package models

import (
	"gorm.io/gorm"
)

// Genre 流派模型，与剧集多对多关联
type Genre struct {
	gorm.Model
	Title   string   `gorm:"type:varchar(100);not null;index" json:"title"`
	Serials []Serial `gorm:"many2many:genre_serial" json:"-"`
}

func (Genre) TableName() string {
	return "genres"
}

// GenreUpdateRequest 更新流派的请求结构体
type GenreUpdateRequest struct {
	Title string `json:"title" binding:"required,max=255" example:"Science Fiction"`
}
