package controllers

import (
	"backend/models"
	"backend/utils"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CommentsResponse 评论接口的通用响应结构
type CommentsResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Total   int64       `json:"total,omitempty"`
}

// @Summary 获取某集的评论
// @Description 获取指定集的评论列表，按行返回，parent_id 指向父评论（可能已被删除）
// @Tags 评论
// @Produce json
// @Param id path int true "集ID"
// @Success 200 {object} CommentsResponse
// @Failure 404 {object} CommentsResponse
// @Failure 500 {object} CommentsResponse
// @Router /episodes/{id}/comments [get]
func GetEpisodeComments(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	// 验证集是否存在
	var episode models.Episode
	if err := models.DB.First(&episode, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, CommentsResponse{
				Code:    http.StatusNotFound,
				Message: fmt.Sprintf("ID为%d的集不存在", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, CommentsResponse{
			Code:    http.StatusInternalServerError,
			Message: "查询集失败",
			Error:   err.Error(),
		})
		return
	}

	var comments []models.Comment
	if err := models.DB.Preload("User").
		Where("episode_id = ?", id).
		Order("id ASC").
		Find(&comments).Error; err != nil {
		utils.LogError("获取评论列表失败", err)
		c.JSON(http.StatusInternalServerError, CommentsResponse{
			Code:    http.StatusInternalServerError,
			Message: "获取评论列表失败",
			Error:   err.Error(),
		})
		return
	}

	result := make([]models.CommentResponse, 0, len(comments))
	for i := range comments {
		result = append(result, models.CommentResponse{
			ID:          comments[i].ID,
			EpisodeID:   comments[i].EpisodeID,
			Description: comments[i].Description,
			ParentID:    comments[i].ParentID,
			AuthorName:  comments[i].AuthorName(),
			CreatedAt:   comments[i].CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	c.JSON(http.StatusOK, CommentsResponse{
		Code:    http.StatusOK,
		Message: "获取评论列表成功",
		Data:    result,
		Total:   int64(len(result)),
	})
}

// @Summary 发表评论
// @Description 给指定集发表评论，parent_id 指定时作为回复
// @Tags 评论
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "集ID"
// @Param comment body models.CommentCreateRequest true "评论内容"
// @Success 201 {object} CommentsResponse
// @Failure 400 {object} CommentsResponse
// @Failure 401 {object} CommentsResponse
// @Failure 404 {object} CommentsResponse
// @Router /episodes/{id}/comments [post]
func CreateComment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	var episode models.Episode
	if err := models.DB.First(&episode, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, CommentsResponse{
				Code:    http.StatusNotFound,
				Message: fmt.Sprintf("ID为%d的集不存在", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, CommentsResponse{
			Code:    http.StatusInternalServerError,
			Message: "查询集失败",
			Error:   err.Error(),
		})
		return
	}

	var body models.CommentCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, CommentsResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的请求参数",
			Error:   err.Error(),
		})
		return
	}

	comment := models.Comment{
		EpisodeID:   id,
		UserID:      &uid,
		Description: body.Description,
		ParentID:    body.ParentID,
	}

	if err := models.DB.Create(&comment).Error; err != nil {
		utils.LogError("发表评论失败", err)
		c.JSON(http.StatusInternalServerError, CommentsResponse{
			Code:    http.StatusInternalServerError,
			Message: "发表评论失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, CommentsResponse{
		Code:    http.StatusCreated,
		Message: "发表评论成功",
		Data:    comment,
	})
}

// @Summary 删除评论
// @Description 删除评论，仅管理员或评论作者可操作；子评论保留并解除父引用
// @Tags 评论
// @Produce json
// @Security Bearer
// @Param id path int true "评论ID"
// @Success 200 {object} CommentsResponse
// @Failure 401 {object} CommentsResponse
// @Failure 403 {object} CommentsResponse
// @Failure 404 {object} CommentsResponse
// @Router /comments/{id} [delete]
func DeleteComment(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	var user models.User
	if err := models.DB.First(&user, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, CommentsResponse{
			Code:    http.StatusUnauthorized,
			Message: "获取用户信息失败",
		})
		return
	}

	var comment models.Comment
	if err := models.DB.First(&comment, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, CommentsResponse{
				Code:    http.StatusNotFound,
				Message: fmt.Sprintf("ID为%d的评论不存在", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, CommentsResponse{
			Code:    http.StatusInternalServerError,
			Message: "查询评论失败",
			Error:   err.Error(),
		})
		return
	}

	if !models.CanDeleteComment(&user, &comment) {
		c.JSON(http.StatusForbidden, CommentsResponse{
			Code:    http.StatusForbidden,
			Message: "没有权限删除该评论",
		})
		return
	}

	// 子评论不级联删除，只解除父引用，查询时按独立行处理
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).
			Where("parent_id = ?", comment.ID).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.LogError("删除评论失败", err)
		c.JSON(http.StatusInternalServerError, CommentsResponse{
			Code:    http.StatusInternalServerError,
			Message: "删除评论失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, CommentsResponse{
		Code:    http.StatusOK,
		Message: "删除评论成功",
	})
}
