package controllers

import (
	"backend/models"
	"backend/services/activity"
	"backend/services/omdb"
	"backend/services/serial"
	"backend/utils"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// CatalogResponse 定义目录接口的通用响应结构
type CatalogResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Total   int64       `json:"total,omitempty"`
}

// SerialRequestBody 请求添加剧集的请求体
type SerialRequestBody struct {
	ImdbID string `json:"imdb_id" binding:"required" example:"tt0903747"`
}

type SerialController struct {
	serialService   *serial.SerialService
	omdbService     *omdb.OmdbService
	activityService *activity.ActivityService
}

func NewSerialController(serialService *serial.SerialService, omdbService *omdb.OmdbService, activityService *activity.ActivityService) *SerialController {
	return &SerialController{
		serialService:   serialService,
		omdbService:     omdbService,
		activityService: activityService,
	}
}

// GetUserId 从上下文取当前用户ID，未认证时写入401响应
func GetUserId(uid *uint, c *gin.Context) error {
	userIDValue, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, CatalogResponse{
			Code:    http.StatusUnauthorized,
			Message: "用户未认证",
		})
		return errors.New("unauthenticated")
	}
	// 断言 user_id 为 float64 (JWT 标准)，然后转换为 uint
	userIDFloat, ok := userIDValue.(float64)
	if !ok {
		c.JSON(http.StatusUnauthorized, CatalogResponse{
			Code:    http.StatusUnauthorized,
			Message: "无效的用户ID格式",
		})
		return errors.New("unauthenticated")
	}
	*uid = uint(userIDFloat)
	return nil
}

// OptionalUserId 从上下文取当前用户ID，匿名请求返回 nil
func OptionalUserId(c *gin.Context) *uint {
	userIDValue, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userIDFloat, ok := userIDValue.(float64)
	if !ok {
		return nil
	}
	uid := uint(userIDFloat)
	return &uid
}

// validOrder 校验排序参数，空值表示未传
func validOrder(orderBy, orderTo string) bool {
	if orderBy != "" && orderBy != "date" && orderBy != "rating" {
		return false
	}
	if orderTo != "" && orderTo != "asc" && orderTo != "desc" {
		return false
	}
	return true
}

// @Summary 获取剧集列表
// @Description 获取剧集列表，支持流派筛选、名称搜索、排序和分页；携带token时附加个性化字段
// @Tags 剧集目录
// @Produce json
// @Param page query int false "页码(默认1)"
// @Param order_by query string false "排序字段 date/rating"
// @Param order_to query string false "排序方向 asc/desc"
// @Param genre query string false "按流派名称模糊筛选"
// @Param search query string false "按名称或原文名称搜索"
// @Success 200 {object} CatalogResponse
// @Failure 400 {object} CatalogResponse
// @Failure 500 {object} CatalogResponse
// @Router /shows [get]
func (sc *SerialController) GetSerials(c *gin.Context) {
	var params models.SerialListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, CatalogResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的请求参数",
			Error:   err.Error(),
		})
		return
	}

	if !validOrder(params.OrderBy, params.OrderTo) {
		c.JSON(http.StatusBadRequest, CatalogResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的排序参数",
		})
		return
	}

	result, err := sc.serialService.GetSerialsList(params, OptionalUserId(c))
	if err != nil {
		utils.LogError("获取剧集列表失败", err)
		c.JSON(http.StatusInternalServerError, CatalogResponse{
			Code:    http.StatusInternalServerError,
			Message: "获取剧集列表失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, CatalogResponse{
		Code:    http.StatusOK,
		Message: "获取剧集列表成功",
		Data:    result,
		Total:   result.Total,
	})
}

// @Summary 获取剧集详情
// @Description 通过ID获取剧集详细信息，包含完整的季/集结构
// @Tags 剧集目录
// @Produce json
// @Param id path int true "剧集ID"
// @Success 200 {object} CatalogResponse
// @Failure 404 {object} CatalogResponse
// @Failure 500 {object} CatalogResponse
// @Router /shows/{id} [get]
func (sc *SerialController) GetSerialByID(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	detail, err := sc.serialService.GetSerialDetails(id, OptionalUserId(c))
	if err != nil {
		if errors.Is(err, serial.ErrNotFound) {
			c.JSON(http.StatusNotFound, CatalogResponse{
				Code:    http.StatusNotFound,
				Message: fmt.Sprintf("ID为%d的剧集不存在", id),
			})
			return
		}
		utils.LogError(fmt.Sprintf("获取ID为%d的剧集失败", id), err)
		c.JSON(http.StatusInternalServerError, CatalogResponse{
			Code:    http.StatusInternalServerError,
			Message: "获取剧集详情失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, CatalogResponse{
		Code:    http.StatusOK,
		Message: "获取剧集详情成功",
		Data:    detail,
	})
}

// @Summary 加入追剧列表
// @Description 把剧集加入当前用户的追剧列表，重复添加不报错
// @Tags 剧集目录
// @Produce json
// @Security Bearer
// @Param id path int true "剧集ID"
// @Success 200 {object} CatalogResponse
// @Failure 401 {object} CatalogResponse
// @Failure 404 {object} CatalogResponse
// @Router /shows/{id}/watchlist [post]
func (sc *SerialController) AddToWatchlist(c *gin.Context) {
	info := "加入追剧列表"
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	if err := sc.serialService.AddToWatchlist(uid, id); err != nil {
		serialMutationError(c, info, id, err)
		return
	}

	c.JSON(http.StatusOK, CatalogResponse{
		Code:    http.StatusOK,
		Message: info + "成功",
	})
}

// @Summary 移出追剧列表
// @Description 把剧集移出当前用户的追剧列表，不在列表中时视为无操作
// @Tags 剧集目录
// @Produce json
// @Security Bearer
// @Param id path int true "剧集ID"
// @Success 200 {object} CatalogResponse
// @Failure 401 {object} CatalogResponse
// @Failure 404 {object} CatalogResponse
// @Router /shows/{id}/watchlist [delete]
func (sc *SerialController) RemoveFromWatchlist(c *gin.Context) {
	info := "移出追剧列表"
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	if err := sc.serialService.RemoveFromWatchlist(uid, id); err != nil {
		serialMutationError(c, info, id, err)
		return
	}

	c.JSON(http.StatusOK, CatalogResponse{
		Code:    http.StatusOK,
		Message: info + "成功",
	})
}

// @Summary 给剧集评分
// @Description 当前用户给剧集评分(1-10)，重复评分覆盖旧值
// @Tags 剧集目录
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "剧集ID"
// @Param vote body models.VoteRequest true "评分信息"
// @Success 200 {object} CatalogResponse
// @Failure 401 {object} CatalogResponse
// @Failure 404 {object} CatalogResponse
// @Failure 422 {object} CatalogResponse
// @Router /shows/{id}/vote [post]
func (sc *SerialController) Vote(c *gin.Context) {
	info := "评分"
	id, err := parseIDParam(c)
	if err != nil {
		return
	}

	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	var body models.VoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, CatalogResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的请求参数",
			Error:   err.Error(),
		})
		return
	}

	// 评分范围在边界处校验，核心逻辑假定输入已合法
	if body.Vote < models.VoteMin || body.Vote > models.VoteMax {
		c.JSON(http.StatusUnprocessableEntity, CatalogResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: fmt.Sprintf("评分必须在%d到%d之间", models.VoteMin, models.VoteMax),
		})
		return
	}

	if err := sc.serialService.Vote(uid, id, body.Vote); err != nil {
		serialMutationError(c, info, id, err)
		return
	}

	sc.activityService.RecordActivity(models.ActivitySerial, &uid, fmt.Sprintf("用户 %d 给剧集 %d 评分 %d", uid, id, body.Vote))

	c.JSON(http.StatusOK, CatalogResponse{
		Code:    http.StatusOK,
		Message: info + "成功",
	})
}

// @Summary 请求添加剧集
// @Description 按 IMDB ID 请求把剧集加入站点目录，元数据在后台异步拉取
// @Tags 剧集目录
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SerialRequestBody true "请求信息"
// @Success 202 {object} CatalogResponse
// @Failure 400 {object} CatalogResponse
// @Failure 401 {object} CatalogResponse
// @Router /shows/request [post]
func (sc *SerialController) RequestSerial(c *gin.Context) {
	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	var body SerialRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, CatalogResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的请求参数",
			Error:   err.Error(),
		})
		return
	}

	// 后台入库，失败只记日志，不影响本次响应
	go sc.omdbService.IngestSerial(body.ImdbID)

	sc.activityService.RecordActivity(models.ActivitySerial, &uid, fmt.Sprintf("用户 %d 请求添加剧集 %s", uid, body.ImdbID))

	c.JSON(http.StatusAccepted, CatalogResponse{
		Code:    http.StatusAccepted,
		Message: "请求已受理，剧集将在后台添加",
	})
}

// parseIDParam 解析路径中的ID参数，非法时写入400响应
func parseIDParam(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, CatalogResponse{
			Code:    http.StatusBadRequest,
			Message: "无效的ID参数",
			Error:   err.Error(),
		})
		return 0, err
	}
	return uint(id), nil
}

// serialMutationError 写操作的统一错误响应
func serialMutationError(c *gin.Context, info string, id uint, err error) {
	if errors.Is(err, serial.ErrNotFound) {
		c.JSON(http.StatusNotFound, CatalogResponse{
			Code:    http.StatusNotFound,
			Message: fmt.Sprintf("ID为%d的剧集不存在", id),
		})
		return
	}
	utils.LogError(info+"失败", err)
	c.JSON(http.StatusInternalServerError, CatalogResponse{
		Code:    http.StatusInternalServerError,
		Message: info + "失败",
		Error:   err.Error(),
	})
}
