package controllers

import (
	"backend/config"
	"backend/middleware"
	"backend/models"
	"backend/services/activity"
	"backend/services/mail"
	"backend/services/omdb"
	"backend/services/serial"
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupRouter 构建测试用的完整路由，与 main.go 中的路由表保持一致
func setupRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("打开内存数据库失败: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("迁移表结构失败: %v", err)
	}
	models.SetDB(db)

	activityService := activity.NewActivityService(db)
	mailService := mail.NewMailService()
	serialService := serial.NewSerialService(db)
	omdbService := omdb.NewOmdbService(db, "http://omdb.invalid", "key")

	authController := NewAuthController(db, activityService, mailService)
	userController := NewUserController(db, serialService)
	serialController := NewSerialController(serialService, omdbService, activityService)
	genreController := NewGenreController(activityService)

	r := gin.New()
	v1 := r.Group("/api/v1")

	v1.POST("/register", authController.Register)
	v1.POST("/login", authController.Login)
	v1.GET("/genres", genreController.GetAllGenres)

	catalog := v1.Group("")
	catalog.Use(middleware.OptionalAuthMiddleware())
	{
		catalog.GET("/shows", serialController.GetSerials)
		catalog.GET("/shows/:id", serialController.GetSerialByID)
		catalog.GET("/episodes/:id/comments", GetEpisodeComments)
	}

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/user/info", authController.GetUserInfo)
		protected.GET("/user/watchlist", userController.GetWatchlist)
		protected.POST("/shows/:id/watchlist", serialController.AddToWatchlist)
		protected.DELETE("/shows/:id/watchlist", serialController.RemoveFromWatchlist)
		protected.POST("/shows/:id/vote", serialController.Vote)
		protected.POST("/shows/request", serialController.RequestSerial)
		protected.POST("/episodes/:id/comments", CreateComment)
		protected.DELETE("/comments/:id", DeleteComment)
		protected.PUT("/genres/:id", genreController.UpdateGenre)
	}

	return r, db
}

// registerUser 注册用户并返回token
func registerUser(t *testing.T, r *gin.Engine, name string) string {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", name)
	w.WriteField("email", name+"@example.com")
	w.WriteField("password", "password123")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("注册失败 status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Data.Token == "" {
		t.Fatalf("注册响应中没有token: %s", rec.Body.String())
	}
	return resp.Data.Token
}

// promoteToModerator 把用户提升为管理员并重新登录换取带新角色的token
func promoteToModerator(t *testing.T, r *gin.Engine, db *gorm.DB, name string) string {
	t.Helper()
	if err := db.Model(&models.User{}).
		Where("email = ?", name+"@example.com").
		Update("role", models.RoleModerator).Error; err != nil {
		t.Fatalf("提升管理员失败: %v", err)
	}
	return login(t, r, name+"@example.com", "password123")
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("登录失败 status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp LoginResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Fatalf("登录响应中没有token")
	}
	return resp.Token
}

func doJSON(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	r, _ := setupRouter(t)
	registerUser(t, r, "alice")

	// 正确密码登录
	login(t, r, "alice@example.com", "password123")

	// 错误密码返回422
	rec := doJSON(r, http.MethodPost, "/api/v1/login",
		"", `{"email":"alice@example.com","password":"wrong-password"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("错误密码应返回422，实际 %d", rec.Code)
	}

	// 重复邮箱注册失败
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.WriteField("name", "alice2")
	w.WriteField("email", "alice@example.com")
	w.WriteField("password", "password123")
	w.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("重复邮箱注册应返回400，实际 %d", rec.Code)
	}
}

func TestRegisterForcesUserRole(t *testing.T) {
	r, db := setupRouter(t)
	registerUser(t, r, "alice")

	var user models.User
	if err := db.Where("email = ?", "alice@example.com").First(&user).Error; err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if user.Role != models.RoleUser {
		t.Errorf("注册用户的角色应为 user，实际 %q", user.Role)
	}
	if user.Password == "password123" {
		t.Error("密码不应明文存储")
	}
}

func TestVoteEndpoint(t *testing.T) {
	r, db := setupRouter(t)
	token := registerUser(t, r, "alice")

	s := models.Serial{ImdbID: "tt0903747", Title: "Breaking Bad"}
	db.Create(&s)
	path := fmt.Sprintf("/api/v1/shows/%d/vote", s.ID)

	// 未认证返回401
	rec := doJSON(r, http.MethodPost, path, "", `{"vote":8}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("匿名评分应返回401，实际 %d", rec.Code)
	}

	// 超出范围返回422
	rec = doJSON(r, http.MethodPost, path, token, `{"vote":11}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("超范围评分应返回422，实际 %d", rec.Code)
	}

	// 正常评分
	rec = doJSON(r, http.MethodPost, path, token, `{"vote":8}`)
	if rec.Code != http.StatusOK {
		t.Errorf("评分应返回200，实际 %d body=%s", rec.Code, rec.Body.String())
	}

	// 不存在的剧集返回404
	rec = doJSON(r, http.MethodPost, "/api/v1/shows/9999/vote", token, `{"vote":8}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("不存在的剧集评分应返回404，实际 %d", rec.Code)
	}
}

func TestWatchlistEndpoints(t *testing.T) {
	r, db := setupRouter(t)
	token := registerUser(t, r, "alice")

	s := models.Serial{ImdbID: "tt0903747", Title: "Breaking Bad"}
	db.Create(&s)
	path := fmt.Sprintf("/api/v1/shows/%d/watchlist", s.ID)

	// 重复添加都返回200
	for i := 0; i < 2; i++ {
		rec := doJSON(r, http.MethodPost, path, token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("加入追剧列表应返回200，实际 %d", rec.Code)
		}
	}

	// 追剧列表里能看到
	rec := doJSON(r, http.MethodGet, "/api/v1/user/watchlist", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("获取追剧列表失败: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Breaking Bad") {
		t.Errorf("追剧列表应包含已添加的剧集: %s", rec.Body.String())
	}

	// 移除后列表为空，重复移除仍返回200
	for i := 0; i < 2; i++ {
		rec = doJSON(r, http.MethodDelete, path, token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("移出追剧列表应返回200，实际 %d", rec.Code)
		}
	}
	var count int64
	db.Model(&models.SerialWatching{}).Count(&count)
	if count != 0 {
		t.Errorf("移除后追剧记录应为0，实际 %d", count)
	}
}

func TestGetSerialsPersonalized(t *testing.T) {
	r, db := setupRouter(t)
	token := registerUser(t, r, "alice")

	s := models.Serial{ImdbID: "tt0903747", Title: "Breaking Bad"}
	db.Create(&s)
	doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/shows/%d/watchlist", s.ID), token, "")
	doJSON(r, http.MethodPost, fmt.Sprintf("/api/v1/shows/%d/vote", s.ID), token, `{"vote":9}`)

	// 匿名请求不带个性化字段
	rec := doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/shows/%d", s.ID), "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("匿名详情查询失败: %d", rec.Code)
	}
	var anon struct {
		Data models.SerialResponse `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &anon)
	if anon.Data.WatchStatus != nil || anon.Data.UserVote != nil {
		t.Error("匿名请求不应带个性化字段")
	}

	// 带token请求附加个性化字段
	rec = doJSON(r, http.MethodGet, fmt.Sprintf("/api/v1/shows/%d", s.ID), token, "")
	var authed struct {
		Data models.SerialResponse `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &authed)
	if authed.Data.WatchStatus == nil || *authed.Data.WatchStatus != models.WatchStatusWatching {
		t.Error("认证请求应带追剧状态")
	}
	if authed.Data.UserVote == nil || *authed.Data.UserVote != 9 {
		t.Error("认证请求应带个人评分")
	}
	if authed.Data.Rating != 9.0 {
		t.Errorf("评分应为9.0，实际 %v", authed.Data.Rating)
	}

	// 不存在的剧集返回404
	rec = doJSON(r, http.MethodGet, "/api/v1/shows/9999", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("不存在的剧集应返回404，实际 %d", rec.Code)
	}

	// 非法排序参数返回400
	rec = doJSON(r, http.MethodGet, "/api/v1/shows?order_by=bogus", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("非法排序参数应返回400，实际 %d", rec.Code)
	}
}

func TestUpdateGenrePermissions(t *testing.T) {
	r, db := setupRouter(t)
	userToken := registerUser(t, r, "alice")
	registerUser(t, r, "mod")
	modToken := promoteToModerator(t, r, db, "mod")

	genre := models.Genre{Title: "Drama"}
	db.Create(&genre)
	path := fmt.Sprintf("/api/v1/genres/%d", genre.ID)

	// 普通用户返回403
	rec := doJSON(r, http.MethodPut, path, userToken, `{"title":"Comedy"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("普通用户修改流派应返回403，实际 %d", rec.Code)
	}

	// 匿名返回401
	rec = doJSON(r, http.MethodPut, path, "", `{"title":"Comedy"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("匿名修改流派应返回401，实际 %d", rec.Code)
	}

	// 管理员修改成功
	rec = doJSON(r, http.MethodPut, path, modToken, `{"title":"Comedy"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("管理员修改流派应返回200，实际 %d body=%s", rec.Code, rec.Body.String())
	}
	var updated models.Genre
	db.First(&updated, genre.ID)
	if updated.Title != "Comedy" {
		t.Errorf("流派名称应已更新，实际 %q", updated.Title)
	}

	// 流派编辑进入活动记录，带操作者ID
	var recorded models.Activity
	if err := db.Where("type = ?", models.ActivityGenre).First(&recorded).Error; err != nil {
		t.Errorf("流派编辑应记录活动: %v", err)
	} else if recorded.UserID == nil {
		t.Errorf("流派编辑的活动应记录操作者")
	}

	// 不存在的流派返回404
	rec = doJSON(r, http.MethodPut, "/api/v1/genres/9999", modToken, `{"title":"X"}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("不存在的流派应返回404，实际 %d", rec.Code)
	}
}

// seedEpisode 建立剧集-季-集的完整层级并返回集ID
func seedEpisode(t *testing.T, db *gorm.DB) uint {
	t.Helper()
	s := models.Serial{ImdbID: "tt0903747", Title: "Breaking Bad"}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("插入剧集失败: %v", err)
	}
	season := models.Season{SerialID: s.ID, Number: 1}
	if err := db.Create(&season).Error; err != nil {
		t.Fatalf("插入季失败: %v", err)
	}
	ep := models.Episode{SeasonID: season.ID, SerialID: s.ID, Number: 1}
	if err := db.Create(&ep).Error; err != nil {
		t.Fatalf("插入集失败: %v", err)
	}
	return ep.ID
}

func TestCommentLifecycle(t *testing.T) {
	r, db := setupRouter(t)
	authorToken := registerUser(t, r, "author")
	strangerToken := registerUser(t, r, "stranger")

	epID := seedEpisode(t, db)
	commentsPath := fmt.Sprintf("/api/v1/episodes/%d/comments", epID)

	// 匿名无法发表评论
	rec := doJSON(r, http.MethodPost, commentsPath, "", `{"description":"nice"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("匿名发表评论应返回401，实际 %d", rec.Code)
	}

	// 作者发表评论
	rec = doJSON(r, http.MethodPost, commentsPath, authorToken, `{"description":"Отличная серия!"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("发表评论应返回201，实际 %d body=%s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data models.Comment `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)

	// 回复该评论
	reply := fmt.Sprintf(`{"description":"reply","parent_id":%d}`, created.Data.ID)
	rec = doJSON(r, http.MethodPost, commentsPath, strangerToken, reply)
	if rec.Code != http.StatusCreated {
		t.Fatalf("回复评论应返回201，实际 %d", rec.Code)
	}

	// 评论列表匿名可读
	rec = doJSON(r, http.MethodGet, commentsPath, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("获取评论列表失败: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Отличная серия!") {
		t.Errorf("评论列表应包含评论内容")
	}

	deletePath := fmt.Sprintf("/api/v1/comments/%d", created.Data.ID)

	// 非作者的普通用户删除返回403
	rec = doJSON(r, http.MethodDelete, deletePath, strangerToken, "")
	if rec.Code != http.StatusForbidden {
		t.Errorf("非作者删除评论应返回403，实际 %d", rec.Code)
	}

	// 作者本人删除成功
	rec = doJSON(r, http.MethodDelete, deletePath, authorToken, "")
	if rec.Code != http.StatusOK {
		t.Errorf("作者删除评论应返回200，实际 %d", rec.Code)
	}

	// 子评论保留且父引用已解除
	var children []models.Comment
	db.Where("episode_id = ?", epID).Find(&children)
	if len(children) != 1 {
		t.Fatalf("子评论应保留，实际剩余 %d 条", len(children))
	}
	if children[0].ParentID != nil {
		t.Errorf("子评论的父引用应已解除")
	}

	// 不存在的集返回404
	rec = doJSON(r, http.MethodGet, "/api/v1/episodes/9999/comments", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("不存在的集应返回404，实际 %d", rec.Code)
	}
}

func TestModeratorCanDeleteAnyComment(t *testing.T) {
	r, db := setupRouter(t)
	authorToken := registerUser(t, r, "author")
	registerUser(t, r, "mod")
	modToken := promoteToModerator(t, r, db, "mod")

	epID := seedEpisode(t, db)
	rec := doJSON(r, http.MethodPost,
		fmt.Sprintf("/api/v1/episodes/%d/comments", epID), authorToken, `{"description":"x"}`)
	var created struct {
		Data models.Comment `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/comments/%d", created.Data.ID), modToken, "")
	if rec.Code != http.StatusOK {
		t.Errorf("管理员删除任意评论应返回200，实际 %d", rec.Code)
	}
}

func TestRequestSerialAccepted(t *testing.T) {
	r, db := setupRouter(t)
	token := registerUser(t, r, "alice")

	// 预置同ID的剧集，后台任务会走已存在分支，不触发外部请求
	db.Create(&models.Serial{ImdbID: "tt0903747", Title: "Breaking Bad"})

	rec := doJSON(r, http.MethodPost, "/api/v1/shows/request", token, `{"imdb_id":"tt0903747"}`)
	if rec.Code != http.StatusAccepted {
		t.Errorf("请求添加剧集应返回202，实际 %d body=%s", rec.Code, rec.Body.String())
	}

	// 匿名请求返回401
	rec = doJSON(r, http.MethodPost, "/api/v1/shows/request", "", `{"imdb_id":"tt0903747"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("匿名请求应返回401，实际 %d", rec.Code)
	}

	// 缺少 imdb_id 返回400
	rec = doJSON(r, http.MethodPost, "/api/v1/shows/request", token, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("缺少imdb_id应返回400，实际 %d", rec.Code)
	}
}

func TestGetUserInfo(t *testing.T) {
	r, _ := setupRouter(t)
	token := registerUser(t, r, "alice")

	rec := doJSON(r, http.MethodGet, "/api/v1/user/info", token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("获取用户信息失败: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alice@example.com") {
		t.Errorf("用户信息应包含邮箱")
	}

	// 伪造token返回401
	rec = doJSON(r, http.MethodGet, "/api/v1/user/info", "not-a-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("伪造token应返回401，实际 %d", rec.Code)
	}
}
