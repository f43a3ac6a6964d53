package controllers

import (
	"backend/models"
	"backend/utils"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type UserManagementController struct {
	DB *gorm.DB
}

func NewUserManagementController(db *gorm.DB) *UserManagementController {
	return &UserManagementController{DB: db}
}

// GetAllUsers godoc
// @Summary      获取用户列表
// @Description  获取系统中所有用户，仅管理员可见，支持分页
// @Tags         用户管理
// @Produce      json
// @Security     Bearer
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200  {object}  Response
// @Failure      500  {object}  Response
// @Router       /admin/users [get]
func (umc *UserManagementController) GetAllUsers(c *gin.Context) {
	page := utils.GetPage(c)
	pageSize := utils.GetPageSize(c)

	var users []models.User
	var total int64

	query := umc.DB.Model(&models.User{})
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("获取用户总数失败", err)
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "获取用户列表失败",
		})
		return
	}

	offset := (page - 1) * pageSize
	if err := query.Order("id ASC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		utils.LogError("获取用户列表失败", err)
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "获取用户列表失败",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: http.StatusOK,
		Data: gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
			"list":      users,
		},
	})
}

// DeleteUser godoc
// @Summary      删除用户
// @Description  删除指定用户，仅管理员可操作
// @Tags         用户管理
// @Produce      json
// @Security     Bearer
// @Param        id path int true "用户ID"
// @Success      200  {object}  Response
// @Failure      404  {object}  Response
// @Router       /admin/users/{id} [delete]
func (umc *UserManagementController) DeleteUser(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var user models.User
	if err := umc.DB.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, Response{
				Code:  http.StatusNotFound,
				Error: fmt.Sprintf("ID为%d的用户不存在", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "查询用户失败",
		})
		return
	}

	if err := umc.DB.Delete(&user).Error; err != nil {
		utils.LogError("删除用户失败", err)
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "删除用户失败",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "删除用户成功",
	})
}
