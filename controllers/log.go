package controllers

import (
	"bufio"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

// LogResponse 日志响应结构
type LogResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源，生产环境应该更严格
	},
	HandshakeTimeout: 10 * time.Second,
}

// initLogFile 初始化日志文件和目录
func initLogFile(logPath string) error {
	dir := filepath.Dir(logPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// 检查日志文件是否存在，不存在则创建
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		file, err := os.Create(logPath)
		if err != nil {
			return err
		}
		file.Close()
	}
	return nil
}

// GetLogs godoc
// @Summary      获取系统日志
// @Description  获取系统日志文件的最新内容
// @Tags         系统管理
// @Produce      json
// @Param        lines  query    int     false  "返回的日志行数(默认100)"  minimum(1) maximum(1000)
// @Success      200    {object} LogResponse
// @Failure      500    {object} LogResponse
// @Security     Bearer
// @Router       /admin/logs [get]
func GetLogs(c *gin.Context) {
	lines := 100 // 默认返回100行
	if lineParam := c.Query("lines"); lineParam != "" {
		if parsedLines, err := strconv.Atoi(lineParam); err == nil && parsedLines > 0 && parsedLines <= 1000 {
			lines = parsedLines
		}
	}

	logPath := filepath.Join("logs", "app.log")

	if err := initLogFile(logPath); err != nil {
		c.JSON(http.StatusInternalServerError, LogResponse{
			Code:    http.StatusInternalServerError,
			Message: "初始化日志文件失败",
			Error:   err.Error(),
		})
		return
	}

	file, err := os.Open(logPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, LogResponse{
			Code:    http.StatusInternalServerError,
			Message: "无法访问日志文件",
			Error:   err.Error(),
		})
		return
	}
	defer file.Close()

	// 读取最后N行日志
	var logLines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		logLines = append(logLines, scanner.Text())
		if len(logLines) > lines {
			logLines = logLines[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, LogResponse{
			Code:    http.StatusInternalServerError,
			Message: "读取日志文件失败",
			Error:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, LogResponse{
		Code:    http.StatusOK,
		Message: "获取日志成功",
		Data:    logLines,
	})
}

// WatchLogs godoc
// @Summary      实时监控系统日志
// @Description  通过WebSocket实时接收系统日志，token通过查询参数传递
// @Tags         系统管理
// @Param        token query string true "JWT令牌"
// @Router       /admin/logs/watch [get]
func WatchLogs(c *gin.Context) {
	// WebSocket握手无法携带Authorization头，token放在查询参数里单独校验
	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, LogResponse{
			Code:    http.StatusUnauthorized,
			Message: "缺少令牌",
		})
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.GetConfig().JWTSecret), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, LogResponse{
			Code:    http.StatusUnauthorized,
			Message: "无效的令牌",
		})
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != models.RoleModerator {
		c.JSON(http.StatusForbidden, LogResponse{
			Code:    http.StatusForbidden,
			Message: "权限不足",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LogError("WebSocket升级失败", err)
		return
	}

	utils.AddClient(conn)
	defer func() {
		utils.RemoveClient(conn)
		conn.Close()
	}()

	// 保持连接直到客户端断开
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
