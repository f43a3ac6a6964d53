package activity

import (
	"backend/config"
	"backend/models"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	return db
}

func TestRecordActivity(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	uid := uint(7)

	if err := svc.RecordActivity(models.ActivitySerial, &uid, "用户 7 给剧集 1 评分 8"); err != nil {
		t.Fatalf("记录活动失败: %v", err)
	}
	// 系统活动不带操作者
	if err := svc.RecordActivity(models.ActivitySystem, nil, "后台任务完成"); err != nil {
		t.Fatalf("记录系统活动失败: %v", err)
	}

	var recorded models.Activity
	if err := db.Where("type = ?", models.ActivitySerial).First(&recorded).Error; err != nil {
		t.Fatalf("活动未入库: %v", err)
	}
	if recorded.UserID == nil || *recorded.UserID != uid {
		t.Errorf("活动应记录操作者ID 7，实际 %v", recorded.UserID)
	}

	var system models.Activity
	if err := db.Where("type = ?", models.ActivitySystem).First(&system).Error; err != nil {
		t.Fatalf("系统活动未入库: %v", err)
	}
	if system.UserID != nil {
		t.Errorf("系统活动不应带操作者ID，实际 %v", *system.UserID)
	}
}

func TestRecordActivityRejectsUnknownType(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)

	if err := svc.RecordActivity("bogus", nil, "x"); err == nil {
		t.Error("未知活动类型应返回错误")
	}
	var count int64
	db.Model(&models.Activity{}).Count(&count)
	if count != 0 {
		t.Errorf("未知类型的活动不应入库，实际 %d 行", count)
	}
}

func TestGetRecentActivities(t *testing.T) {
	db := newTestDB(t)
	svc := NewActivityService(db)
	uid := uint(1)

	svc.RecordActivity(models.ActivityUser, &uid, "first")
	svc.RecordActivity(models.ActivitySerial, &uid, "second")
	svc.RecordActivity(models.ActivityGenre, &uid, "third")

	// 不过滤时最新在前
	activities, err := svc.GetRecentActivities("", 10)
	if err != nil {
		t.Fatalf("获取活动记录失败: %v", err)
	}
	if len(activities) != 3 {
		t.Fatalf("应返回3条，实际 %d", len(activities))
	}
	if activities[0].Content != "third" || activities[2].Content != "first" {
		t.Errorf("活动应按最新在前排序")
	}

	// limit 生效
	activities, _ = svc.GetRecentActivities("", 2)
	if len(activities) != 2 {
		t.Errorf("limit=2 应返回2条，实际 %d", len(activities))
	}

	// 按类型过滤
	activities, _ = svc.GetRecentActivities(models.ActivityGenre, 10)
	if len(activities) != 1 || activities[0].Content != "third" {
		t.Errorf("类型过滤应只返回流派活动")
	}
}
