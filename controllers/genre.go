package controllers

import (
	"backend/models"
	"backend/services/activity"
	"backend/utils"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// GenreResponse 流派接口的通用响应结构
type GenreResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Total   int64       `json:"total,omitempty"`
}

type GenreController struct {
	activityService *activity.ActivityService
}

func NewGenreController(activityService *activity.ActivityService) *GenreController {
	return &GenreController{activityService: activityService}
}

// @Summary 获取流派列表
// @Description 获取系统中所有流派
// @Tags 流派管理
// @Produce json
// @Success 200 {object} GenreResponse
// @Failure 500 {object} GenreResponse
// @Router /genres [get]
func (gc *GenreController) GetAllGenres(c *gin.Context) {
	var genres []models.Genre
	var total int64

	query := models.DB.Model(&models.Genre{})
	if err := query.Count(&total).Error; err != nil {
		utils.LogError("获取流派总数失败", err)
		c.JSON(http.StatusInternalServerError, GenreResponse{
			Code:    http.StatusInternalServerError,
			Message: "获取流派列表失败",
			Error:   err.Error(),
		})
		return
	}

	if err := query.Order("id ASC").Find(&genres).Error; err != nil {
		utils.LogError("获取流派列表失败", err)
		c.JSON(http.StatusInternalServerError, GenreResponse{
			Code:    http.StatusInternalServerError,
			Message: "获取流派列表失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, GenreResponse{
		Code:    http.StatusOK,
		Message: "获取流派列表成功",
		Data:    genres,
		Total:   total,
	})
}

// @Summary 更新流派
// @Description 修改流派名称，仅管理员可操作
// @Tags 流派管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "流派ID"
// @Param genre body models.GenreUpdateRequest true "流派信息"
// @Success 200 {object} GenreResponse
// @Failure 400 {object} GenreResponse
// @Failure 403 {object} GenreResponse
// @Failure 404 {object} GenreResponse
// @Router /genres/{id} [put]
func (gc *GenreController) UpdateGenre(c *gin.Context) {
	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	// 权限判定基于数据库里的最新角色，不信任令牌中的快照
	var user models.User
	if err := models.DB.First(&user, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, GenreResponse{
			Code:    http.StatusUnauthorized,
			Message: "获取用户信息失败",
		})
		return
	}

	if !models.CanUpdateGenre(&user) {
		c.JSON(http.StatusForbidden, GenreResponse{
			Code:    http.StatusForbidden,
			Message: "没有权限修改流派",
		})
		return
	}

	id := c.Param("id")
	var genre models.Genre
	if err := models.DB.First(&genre, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, GenreResponse{
				Code:    http.StatusNotFound,
				Message: fmt.Sprintf("ID为%s的流派不存在", id),
			})
		} else {
			utils.LogError(fmt.Sprintf("查询ID为%s的流派失败", id), err)
			c.JSON(http.StatusInternalServerError, GenreResponse{
				Code:    http.StatusInternalServerError,
				Message: "查询流派失败",
				Error:   err.Error(),
			})
		}
		return
	}

	var body models.GenreUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, GenreResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的请求参数",
			Error:   err.Error(),
		})
		return
	}

	oldTitle := genre.Title
	genre.Title = body.Title
	if err := models.DB.Save(&genre).Error; err != nil {
		utils.LogError("更新流派失败", err)
		c.JSON(http.StatusInternalServerError, GenreResponse{
			Code:    http.StatusInternalServerError,
			Message: "更新流派失败",
			Error:   err.Error(),
		})
		return
	}

	gc.activityService.RecordActivity(models.ActivityGenre, &uid,
		fmt.Sprintf("流派 \"%s\" 重命名为 \"%s\"", oldTitle, genre.Title))

	c.JSON(http.StatusOK, GenreResponse{
		Code:    http.StatusOK,
		Message: "更新流派成功",
		Data:    genre,
	})
}
