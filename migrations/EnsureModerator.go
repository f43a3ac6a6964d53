package migrations

import (
	"backend/models"
	"log"
	"os"
)

// EnsureModerator 把 MODERATOR_EMAIL 指定的账号提升为管理员
// 管理员只能由运维指定，注册接口不提供提权入口
func EnsureModerator() {
	email := os.Getenv("MODERATOR_EMAIL")
	if email == "" {
		return
	}

	result := models.DB.Model(&models.User{}).
		Where("email = ? AND role <> ?", email, models.RoleModerator).
		Update("role", models.RoleModerator)
	if result.Error != nil {
		log.Printf("提升管理员账号失败: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("已将 %s 提升为管理员", email)
	}
}
