package controllers

import (
	"backend/models"
	"backend/services/serial"
	"backend/utils"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserController struct {
	DB            *gorm.DB
	serialService *serial.SerialService
}

func NewUserController(db *gorm.DB, serialService *serial.SerialService) *UserController {
	return &UserController{
		DB:            db,
		serialService: serialService,
	}
}

// GetWatchlist godoc
// @Summary      获取追剧列表
// @Description  获取当前用户追剧列表中的全部剧集（带聚合和个性化字段）
// @Tags         用户
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Failure      500  {object}  Response
// @Router       /user/watchlist [get]
func (uc *UserController) GetWatchlist(c *gin.Context) {
	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	items, err := uc.serialService.GetWatchlist(uid)
	if err != nil {
		utils.LogError("获取追剧列表失败", err)
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "获取追剧列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: http.StatusOK,
		Data: gin.H{
			"total": len(items),
			"list":  items,
		},
	})
}

// UpdateProfile godoc
// @Summary      更新个人资料
// @Description  更新当前用户的用户名、邮箱、密码或头像，字段均可选
// @Tags         用户
// @Accept       multipart/form-data
// @Produce      json
// @Security     Bearer
// @Param        name formData string false "用户名"
// @Param        email formData string false "邮箱"
// @Param        password formData string false "新密码(至少8位)"
// @Param        avatar formData file false "头像文件"
// @Success      200  {object}  Response
// @Failure      400  {object}  Response
// @Failure      401  {object}  Response
// @Router       /user/profile [patch]
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	var user models.User
	if err := uc.DB.First(&user, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, Response{
			Code:  http.StatusUnauthorized,
			Error: "获取用户信息失败",
		})
		return
	}

	var req models.ProfileUpdateRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:  http.StatusBadRequest,
			Error: "无效的请求参数",
		})
		return
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			c.JSON(http.StatusBadRequest, Response{
				Code:  http.StatusBadRequest,
				Error: "密码至少8位",
			})
			return
		}
		user.Password = req.Password
		if err := user.HashPassword(); err != nil {
			c.JSON(http.StatusInternalServerError, Response{
				Code:  http.StatusInternalServerError,
				Error: "密码加密失败",
			})
			return
		}
	}

	// 只有传了新头像才替换，旧头像文件顺带清理
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		newPath, err := saveAvatar(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, Response{
				Code:  http.StatusInternalServerError,
				Error: "保存头像失败",
			})
			return
		}
		if user.Avatar != "" && user.Avatar != newPath {
			os.Remove(strings.TrimPrefix(user.Avatar, "/"))
		}
		user.Avatar = newPath
	}

	if err := uc.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:  http.StatusBadRequest,
			Error: "更新失败，邮箱可能已被占用",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "更新个人资料成功",
		Data: gin.H{
			"name":   user.Name,
			"email":  user.Email,
			"avatar": user.Avatar,
		},
	})
}
