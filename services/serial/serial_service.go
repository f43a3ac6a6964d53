package serial

import (
	"backend/models"
	"errors"
	"math"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PerPage 目录列表固定的每页条数
const PerPage = 20

// ErrNotFound 请求的剧集不存在
var ErrNotFound = errors.New("serial not found")

// SerialService 剧集目录服务：筛选、排序、分页，以及逐行附加聚合和个性化字段
type SerialService struct {
	db *gorm.DB
}

func NewSerialService(db *gorm.DB) *SerialService {
	return &SerialService{db: db}
}

// ListResult 分页查询结果
type ListResult struct {
	Items      []models.SerialResponse `json:"list"`
	Total      int64                   `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int64                   `json:"total_pages"`
}

// GetSerialsList 获取剧集列表，userID 为 nil 表示匿名请求
// 筛选条件相互独立，按逻辑与组合
func (s *SerialService) GetSerialsList(params models.SerialListParams, userID *uint) (*ListResult, error) {
	page := params.Page
	if page <= 0 {
		page = 1
	}

	query := s.db.Model(&models.Serial{})
	query = s.applyGenreFilter(query, params.Genre)
	query = s.applySearchFilter(query, params.Search)

	// 先在未排序的查询上计数，流派筛选走 EXISTS 子查询，不会产生重复行
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	query = s.applySorting(query, params.OrderBy, params.OrderTo)

	var serials []models.Serial
	offset := (page - 1) * PerPage
	if err := query.Preload("Genres").Offset(offset).Limit(PerPage).Find(&serials).Error; err != nil {
		return nil, err
	}

	// 逐行附加派生字段，保持SQL排序的顺序
	items := make([]models.SerialResponse, 0, len(serials))
	for i := range serials {
		resp, err := s.formatSerial(&serials[i], userID, false)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}

	totalPages := (total + PerPage - 1) / PerPage
	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   PerPage,
		TotalPages: totalPages,
	}, nil
}

// GetSerialDetails 获取剧集详情，额外加载完整的季/集结构
func (s *SerialService) GetSerialDetails(id uint, userID *uint) (*models.SerialResponse, error) {
	var serial models.Serial
	err := s.db.Preload("Genres").
		Preload("Seasons", func(db *gorm.DB) *gorm.DB {
			return db.Order("seasons.number ASC")
		}).
		Preload("Seasons.Episodes", func(db *gorm.DB) *gorm.DB {
			return db.Order("episodes.number ASC")
		}).
		First(&serial, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return s.formatSerial(&serial, userID, true)
}

// GetWatchlist 获取用户追剧列表中的全部剧集
func (s *SerialService) GetWatchlist(userID uint) ([]models.SerialResponse, error) {
	var serials []models.Serial
	err := s.db.Model(&models.Serial{}).
		Joins("JOIN serial_watching ON serial_watching.serial_id = serials.id").
		Where("serial_watching.user_id = ?", userID).
		Order("serial_watching.created_at DESC").
		Preload("Genres").
		Find(&serials).Error
	if err != nil {
		return nil, err
	}

	items := make([]models.SerialResponse, 0, len(serials))
	for i := range serials {
		resp, err := s.formatSerial(&serials[i], &userID, false)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return items, nil
}

// applyGenreFilter 按关联流派名称筛选，大小写不敏感的子串匹配
// 任意一个关联流派命中即视为命中
// 筛选词和列必须用同一引擎做大小写折叠，否则非ASCII字符两侧折叠结果不一致
func (s *SerialService) applyGenreFilter(query *gorm.DB, genre string) *gorm.DB {
	if genre == "" {
		return query
	}
	pattern := "%" + genre + "%"
	return query.Where(`EXISTS (
		SELECT 1 FROM genre_serial
		JOIN genres ON genres.id = genre_serial.genre_id AND genres.deleted_at IS NULL
		WHERE genre_serial.serial_id = serials.id AND LOWER(genres.title) LIKE LOWER(?))`, pattern)
}

// applySearchFilter 按名称搜索，命中名称或原文名称任意一个即可
// 折叠规则同 applyGenreFilter，全部交给数据库
func (s *SerialService) applySearchFilter(query *gorm.DB, search string) *gorm.DB {
	if search == "" {
		return query
	}
	pattern := "%" + search + "%"
	return query.Where("LOWER(serials.title) LIKE LOWER(?) OR LOWER(serials.title_original) LIKE LOWER(?)", pattern, pattern)
}

// applySorting 应用排序
// 显式排序一律带 serials.id DESC 作为次级排序键，保证相等值下分页结果稳定
func (s *SerialService) applySorting(query *gorm.DB, orderBy, orderTo string) *gorm.DB {
	direction := "desc"
	if strings.EqualFold(orderTo, "asc") {
		direction = "asc"
	}

	switch orderBy {
	case "date":
		return query.Order("serials.year " + direction + ", serials.id DESC")
	case "rating":
		// 评分排序在SQL里聚合，不逐行调用评分计算
		return query.
			Select("serials.*, COALESCE(AVG(serials_votes.vote), 0) AS avg_rating").
			Joins("LEFT JOIN serials_votes ON serials_votes.serial_id = serials.id").
			Group("serials.id").
			Order("avg_rating " + direction + ", serials.id DESC")
	default:
		// 默认按录入顺序倒序（最新在前）
		return query.Order("serials.id DESC")
	}
}

// Rating 计算剧集的平均评分，保留一位小数
// 没有评分时返回 0.0，这是定义好的零值，不是错误
func (s *SerialService) Rating(serialID uint) (float64, error) {
	var avg float64
	err := s.db.Model(&models.SerialVote{}).
		Where("serial_id = ?", serialID).
		Select("COALESCE(AVG(vote), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return math.Round(avg*10) / 10, nil
}

// personalization 个性化派生字段
type personalization struct {
	WatchStatus     *string
	WatchedEpisodes int64
	UserVote        *int
}

// personalize 计算当前用户相关的派生字段
// 匿名请求直接返回零值，不访问数据库
func (s *SerialService) personalize(serialID uint, userID *uint) (*personalization, error) {
	p := &personalization{}
	if userID == nil {
		return p, nil
	}

	var watching int64
	err := s.db.Model(&models.SerialWatching{}).
		Where("user_id = ? AND serial_id = ?", *userID, serialID).
		Count(&watching).Error
	if err != nil {
		return nil, err
	}
	if watching > 0 {
		status := models.WatchStatusWatching
		p.WatchStatus = &status
	}

	// 用剧集的集合与用户的已看集合求交集计数，不信任任何冗余计数器
	err = s.db.Model(&models.EpisodeWatched{}).
		Joins("JOIN episodes ON episodes.id = episodes_watched.episode_id AND episodes.deleted_at IS NULL").
		Where("episodes_watched.user_id = ? AND episodes.serial_id = ?", *userID, serialID).
		Count(&p.WatchedEpisodes).Error
	if err != nil {
		return nil, err
	}

	var vote models.SerialVote
	err = s.db.Where("user_id = ? AND serial_id = ?", *userID, serialID).First(&vote).Error
	if err == nil {
		p.UserVote = &vote.Vote
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return p, nil
}

// formatSerial 组装响应结构，withSeasons 为真时附带完整的季/集结构
func (s *SerialService) formatSerial(serial *models.Serial, userID *uint, withSeasons bool) (*models.SerialResponse, error) {
	rating, err := s.Rating(serial.ID)
	if err != nil {
		return nil, err
	}

	p, err := s.personalize(serial.ID, userID)
	if err != nil {
		return nil, err
	}

	var totalSeasons, totalEpisodes int64
	if err := s.db.Model(&models.Season{}).Where("serial_id = ?", serial.ID).Count(&totalSeasons).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Episode{}).Where("serial_id = ?", serial.ID).Count(&totalEpisodes).Error; err != nil {
		return nil, err
	}

	genres := make([]models.GenreBrief, 0, len(serial.Genres))
	for _, g := range serial.Genres {
		genres = append(genres, models.GenreBrief{ID: g.ID, Title: g.Title})
	}

	year := 0
	if serial.Year != nil {
		year = *serial.Year
	}

	resp := &models.SerialResponse{
		ID:              serial.ID,
		Title:           serial.Title,
		TitleOriginal:   serial.TitleOriginal,
		Status:          serial.Status,
		Year:            year,
		Rating:          rating,
		TotalSeasons:    totalSeasons,
		TotalEpisodes:   totalEpisodes,
		Genres:          genres,
		WatchStatus:     p.WatchStatus,
		WatchedEpisodes: p.WatchedEpisodes,
		UserVote:        p.UserVote,
	}

	if withSeasons {
		resp.Seasons = make([]models.SeasonResponse, 0, len(serial.Seasons))
		for _, season := range serial.Seasons {
			sr := models.SeasonResponse{
				ID:       season.ID,
				Number:   season.Number,
				Title:    season.Title,
				Episodes: make([]models.EpisodeResponse, 0, len(season.Episodes)),
			}
			for _, ep := range season.Episodes {
				er := models.EpisodeResponse{ID: ep.ID, Number: ep.Number}
				if ep.AirDate != nil {
					er.AirDate = ep.AirDate.Format("2006-01-02")
				}
				sr.Episodes = append(sr.Episodes, er)
			}
			resp.Seasons = append(resp.Seasons, sr)
		}
	}

	return resp, nil
}

// serialExists 检查剧集是否存在
func (s *SerialService) serialExists(serialID uint) error {
	var serial models.Serial
	if err := s.db.Select("id").First(&serial, serialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// AddToWatchlist 把剧集加入用户的追剧列表，幂等：已存在时不报错也不产生重复行
func (s *SerialService) AddToWatchlist(userID, serialID uint) error {
	if err := s.serialExists(serialID); err != nil {
		return err
	}

	entry := models.SerialWatching{UserID: userID, SerialID: serialID}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "serial_id"}},
		DoNothing: true,
	}).Create(&entry).Error
}

// RemoveFromWatchlist 把剧集移出追剧列表，幂等：不存在时视为无操作
func (s *SerialService) RemoveFromWatchlist(userID, serialID uint) error {
	if err := s.serialExists(serialID); err != nil {
		return err
	}

	return s.db.Where("user_id = ? AND serial_id = ?", userID, serialID).
		Delete(&models.SerialWatching{}).Error
}

// Vote 记录用户对剧集的评分，重复评分覆盖旧值而不是新增一行
// 评分范围由调用方在边界处校验
func (s *SerialService) Vote(userID, serialID uint, vote int) error {
	if err := s.serialExists(serialID); err != nil {
		return err
	}

	record := models.SerialVote{UserID: userID, SerialID: serialID, Vote: vote}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "serial_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"vote", "updated_at"}),
	}).Create(&record).Error
}
