package models

import (
	"gorm.io/gorm"
)

// Serial 剧集模型
type Serial struct {
	gorm.Model
	ImdbID        string       `gorm:"type:varchar(20);uniqueIndex;not null;comment:IMDB编号" json:"imdb_id"`
	Title         string       `gorm:"type:varchar(255);not null;index;comment:剧集名称" json:"title"`
	TitleOriginal string       `gorm:"type:varchar(255);index;comment:原文名称" json:"title_original"`
	Status        string       `gorm:"type:varchar(50);comment:播出状态" json:"status"`
	Year          *int         `gorm:"comment:首播年份" json:"year,omitempty"`
	Genres        []Genre      `gorm:"many2many:genre_serial" json:"genres,omitempty"`
	Seasons       []Season     `json:"seasons,omitempty"`
	Votes         []SerialVote `json:"-"`
}

func (Serial) TableName() string {
	return "serials"
}

// SerialListParams 剧集列表查询参数
type SerialListParams struct {
	Page    int    `form:"page"`     // 页码，从1开始
	OrderBy string `form:"order_by"` // 排序字段 date/rating
	OrderTo string `form:"order_to"` // 排序方向 asc/desc
	Genre   string `form:"genre"`    // 按关联的流派名称模糊筛选
	Search  string `form:"search"`   // 按名称或原文名称搜索
}

// GenreBrief 剧集响应中的流派信息
type GenreBrief struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// SerialResponse 带聚合字段和个性化字段的剧集响应
type SerialResponse struct {
	ID              uint             `json:"id"`
	Title           string           `json:"title"`
	TitleOriginal   string           `json:"title_original"`
	Status          string           `json:"status"`
	Year            int              `json:"year"`
	Rating          float64          `json:"rating"`
	TotalSeasons    int64            `json:"total_seasons"`
	TotalEpisodes   int64            `json:"total_episodes"`
	Genres          []GenreBrief     `json:"genres"`
	WatchStatus     *string          `json:"watch_status"`
	WatchedEpisodes int64            `json:"watched_episodes"`
	UserVote        *int             `json:"user_vote"`
	Seasons         []SeasonResponse `json:"seasons,omitempty"` // 仅详情接口返回完整的季/集结构
}

// SeasonResponse 详情接口中的季结构
type SeasonResponse struct {
	ID       uint              `json:"id"`
	Number   int               `json:"number"`
	Title    string            `json:"title,omitempty"`
	Episodes []EpisodeResponse `json:"episodes"`
}

// EpisodeResponse 详情接口中的集结构
type EpisodeResponse struct {
	ID      uint   `json:"id"`
	Number  int    `json:"number"`
	AirDate string `json:"air_date,omitempty"`
}
