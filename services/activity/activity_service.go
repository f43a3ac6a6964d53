package activity

import (
	"backend/models"
	"backend/utils"
	"fmt"

	"gorm.io/gorm"
)

// ActivityService 活动记录服务，为管理端提供审计信息流
type ActivityService struct {
	db *gorm.DB
}

func NewActivityService(db *gorm.DB) *ActivityService {
	return &ActivityService{db: db}
}

// validTypes 允许入库的活动类型
var validTypes = map[string]bool{
	models.ActivityUser:   true,
	models.ActivitySerial: true,
	models.ActivityGenre:  true,
	models.ActivitySystem: true,
}

// RecordActivity 记录一条活动，userID 为 nil 表示系统自身产生的活动
func (s *ActivityService) RecordActivity(activityType string, userID *uint, content string) error {
	if !validTypes[activityType] {
		err := fmt.Errorf("未知的活动类型: %s", activityType)
		utils.LogError("记录活动失败", err)
		return err
	}

	activity := models.Activity{
		Type:    activityType,
		UserID:  userID,
		Content: content,
	}

	if err := s.db.Create(&activity).Error; err != nil {
		utils.LogError("记录活动失败", err)
		return err
	}

	return nil
}

// GetRecentActivities 获取最近的活动记录，activityType 为空时不按类型过滤
func (s *ActivityService) GetRecentActivities(activityType string, limit int) ([]models.Activity, error) {
	query := s.db.Model(&models.Activity{})
	if activityType != "" {
		query = query.Where("type = ?", activityType)
	}

	var activities []models.Activity
	if err := query.Order("id DESC").Limit(limit).Find(&activities).Error; err != nil {
		utils.LogError("获取最近活动记录失败", err)
		return nil, err
	}

	return activities, nil
}
