package omdb

import (
	"backend/models"
	"backend/utils"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// OmdbService 从 OMDB 拉取剧集元数据并入库的后台任务
// 任务与调用方完全解耦：上游未找到或接口出错时只记日志，不向调用方传播错误
type OmdbService struct {
	db     *gorm.DB
	apiURL string
	apiKey string
	fetch  func(string) ([]byte, error)
}

func NewOmdbService(db *gorm.DB, apiURL, apiKey string) *OmdbService {
	return &OmdbService{
		db:     db,
		apiURL: apiURL,
		apiKey: apiKey,
		fetch:  utils.FetchURLContent,
	}
}

// omdbPayload OMDB 接口返回的字段子集
type omdbPayload struct {
	ImdbID   string `json:"imdbID"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`  // 剧集格式形如 "2008–2013"
	Genre    string `json:"Genre"` // 逗号分隔
	Status   string `json:"Type"`
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// IngestSerial 按 IMDB ID 拉取并保存剧集，已存在时直接跳过
// 设计为在独立的 goroutine 中运行
func (s *OmdbService) IngestSerial(imdbID string) {
	var count int64
	if err := s.db.Model(&models.Serial{}).Where("imdb_id = ?", imdbID).Count(&count).Error; err != nil {
		utils.LogError(fmt.Sprintf("检查剧集 %s 是否已存在失败", imdbID), err)
		return
	}
	if count > 0 {
		utils.LogInfo(fmt.Sprintf("剧集 %s 已存在，跳过入库", imdbID))
		return
	}

	requestURL := fmt.Sprintf("%s?apikey=%s&i=%s",
		s.apiURL, url.QueryEscape(s.apiKey), url.QueryEscape(imdbID))

	body, err := s.fetch(requestURL)
	if err != nil {
		utils.LogError(fmt.Sprintf("请求OMDB失败: %s", imdbID), err)
		return
	}

	var payload omdbPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.LogError(fmt.Sprintf("解析OMDB响应失败: %s", imdbID), err)
		return
	}

	if payload.Response != "True" {
		utils.LogWarn(fmt.Sprintf("OMDB未找到剧集 %s: %s", imdbID, payload.Error))
		return
	}

	serial := models.Serial{
		ImdbID:        payload.ImdbID,
		Title:         payload.Title,
		TitleOriginal: payload.Title,
		Status:        payload.Status,
		Year:          parseFirstYear(payload.Year),
	}
	if serial.ImdbID == "" {
		serial.ImdbID = imdbID
	}

	if err := s.db.Create(&serial).Error; err != nil {
		utils.LogError(fmt.Sprintf("保存剧集 %s 失败", imdbID), err)
		return
	}

	s.attachGenres(&serial, payload.Genre)

	utils.LogInfo(fmt.Sprintf("已保存剧集: %s (IMDB: %s)", serial.Title, serial.ImdbID))
}

// attachGenres 按名称关联流派，不存在的流派顺带创建
func (s *OmdbService) attachGenres(serial *models.Serial, genreList string) {
	if genreList == "" {
		return
	}

	for _, name := range strings.Split(genreList, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		var genre models.Genre
		if err := s.db.Where("title = ?", name).FirstOrCreate(&genre, models.Genre{Title: name}).Error; err != nil {
			utils.LogError(fmt.Sprintf("创建流派 %s 失败", name), err)
			continue
		}
		if err := s.db.Model(serial).Association("Genres").Append(&genre); err != nil {
			utils.LogError(fmt.Sprintf("关联流派 %s 失败", name), err)
		}
	}
}

// parseFirstYear 从 OMDB 的年份字符串里取首播年份
func parseFirstYear(raw string) *int {
	if raw == "" {
		return nil
	}
	digits := raw
	for i, r := range raw {
		if r < '0' || r > '9' {
			digits = raw[:i]
			break
		}
	}
	year, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &year
}
