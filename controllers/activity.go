package controllers

import (
	"backend/services/activity"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ActivityController struct {
	activityService *activity.ActivityService
}

func NewActivityController(activityService *activity.ActivityService) *ActivityController {
	return &ActivityController{activityService: activityService}
}

// GetRecentActivities godoc
// @Summary      获取最近活动记录
// @Description  获取系统最近的活动记录，仅管理员可见，可按类型过滤
// @Tags         系统管理
// @Produce      json
// @Security     Bearer
// @Param        limit query int false "返回条数(默认20)"
// @Param        type  query string false "活动类型 user/serial/genre/system"
// @Success      200  {object}  Response
// @Failure      500  {object}  Response
// @Router       /admin/activities [get]
func (ac *ActivityController) GetRecentActivities(c *gin.Context) {
	limit := 20
	if limitParam := c.Query("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	activities, err := ac.activityService.GetRecentActivities(c.Query("type"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "获取活动记录失败",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: http.StatusOK,
		Data: activities,
	})
}
