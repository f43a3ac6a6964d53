package controllers

import (
	"backend/config"
	"backend/models"
	"backend/services/activity"
	"backend/services/mail"
	"backend/utils"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type AuthController struct {
	DB              *gorm.DB
	activityService *activity.ActivityService
	mailService     *mail.MailService
}

func NewAuthController(db *gorm.DB, activityService *activity.ActivityService, mailService *mail.MailService) *AuthController {
	return &AuthController{
		DB:              db,
		activityService: activityService,
		mailService:     mailService,
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token   string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Message string `json:"message" example:"登录成功"`
	Role    string `json:"role" example:"user"`
}

// saveAvatar 保存上传的头像文件，按内容MD5命名去重
func saveAvatar(c *gin.Context, file *multipart.FileHeader) (string, error) {
	avatarDir := filepath.Join("uploads", "avatars")
	if err := os.MkdirAll(avatarDir, 0755); err != nil {
		return "", err
	}

	// 先存临时文件，算出哈希后再落到最终文件名
	tmpName, err := utils.GenerateRandomString(16)
	if err != nil {
		return "", err
	}
	tmpPath := filepath.Join(avatarDir, "tmp_"+tmpName)
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		return "", err
	}

	hash := utils.CalculateFileMD5(tmpPath)
	if hash == "" {
		os.Remove(tmpPath)
		return "", fmt.Errorf("计算头像哈希失败")
	}

	finalPath := filepath.Join(avatarDir, hash+filepath.Ext(file.Filename))
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return "/" + filepath.ToSlash(finalPath), nil
}

// Register godoc
// @Summary      用户注册
// @Description  注册新用户并返回token
// @Tags         认证
// @Accept       multipart/form-data
// @Produce      json
// @Param        name formData string true "用户名"
// @Param        email formData string true "邮箱"
// @Param        password formData string true "密码(至少8位)"
// @Param        avatar formData file false "头像文件"
// @Success      201  {object}  Response
// @Failure      400  {object}  Response
// @Router       /register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:  http.StatusBadRequest,
			Error: "用户名、邮箱和密码不能为空，密码至少8位",
		})
		return
	}

	// 处理头像上传
	avatarPath := ""
	if file, err := c.FormFile("avatar"); err == nil && file != nil {
		avatarPath, err = saveAvatar(c, file)
		if err != nil {
			c.JSON(http.StatusInternalServerError, Response{
				Code:  http.StatusInternalServerError,
				Error: "保存头像失败",
			})
			return
		}
	}

	user := models.User{
		Name:     req.Name,
		Password: req.Password,
		Email:    req.Email,
		Role:     models.RoleUser, // 注册的用户一律是普通用户，管理员只能由运维指定
		Avatar:   avatarPath,
	}

	if err := user.HashPassword(); err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "密码加密失败",
		})
		return
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:  http.StatusBadRequest,
			Error: "邮箱已被注册",
		})
		return
	}

	ac.activityService.RecordActivity(models.ActivityUser, &user.ID, fmt.Sprintf("新用户 \"%s\" 注册成功", user.Name))

	// 欢迎邮件与注册响应解耦
	go ac.mailService.SendWelcomeMail(user.Email, user.Name)

	token, err := generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "生成令牌失败",
		})
		return
	}

	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "注册成功",
		Data: gin.H{
			"token": token,
			"user": gin.H{
				"id":     user.ID,
				"name":   user.Name,
				"email":  user.Email,
				"role":   user.Role,
				"avatar": user.Avatar,
			},
		},
	})
}

// generateToken 签发24小时有效的JWT
func generateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	})
	return token.SignedString([]byte(config.GetConfig().JWTSecret))
}

// Login godoc
// @Summary      用户登录
// @Description  用户登录并获取token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        login body models.LoginRequest true "登录信息"
// @Success      200  {object}  LoginResponse
// @Failure      400  {object}  Response
// @Failure      422  {object}  Response
// @Router       /login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var loginUser models.LoginRequest
	if err := c.ShouldBindJSON(&loginUser); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:  http.StatusBadRequest,
			Error: "请求数据格式不正确",
		})
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", loginUser.Email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Code:  http.StatusUnprocessableEntity,
			Error: "邮箱或密码错误",
		})
		return
	}

	if err := user.ComparePassword(loginUser.Password); err != nil {
		c.JSON(http.StatusUnprocessableEntity, Response{
			Code:  http.StatusUnprocessableEntity,
			Error: "邮箱或密码错误",
		})
		return
	}

	token, err := generateToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:  http.StatusInternalServerError,
			Error: "生成令牌失败",
		})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Message: "登录成功",
		Role:    user.Role,
	})
}

// GetUserInfo godoc
// @Summary      获取当前用户信息
// @Description  使用token获取当前登录用户的详细信息
// @Tags         用户
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  Response
// @Failure      401  {object}  Response
// @Router       /user/info [get]
func (ac *AuthController) GetUserInfo(c *gin.Context) {
	var uid uint
	if err := GetUserId(&uid, c); err != nil {
		return
	}

	var user models.User
	if err := ac.DB.First(&user, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, Response{
			Code:  http.StatusUnauthorized,
			Error: "获取用户信息失败",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code: http.StatusOK,
		Data: gin.H{
			"id":         user.ID,
			"name":       user.Name,
			"email":      user.Email,
			"role":       user.Role,
			"avatar":     user.Avatar,
			"created_at": user.CreatedAt,
			"updated_at": user.UpdatedAt,
		},
	})
}
