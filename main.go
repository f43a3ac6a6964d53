package main

import (
	"backend/config"
	"backend/controllers"
	_ "backend/docs" // 导入 swagger 生成的文档
	"backend/middleware"
	"backend/migrations"
	"backend/models"
	"backend/services/activity"
	"backend/services/mail"
	"backend/services/omdb"
	"backend/services/serial"
	"backend/utils"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Что посмотреть API
// @version         1.0
// @description     剧集目录与追剧网站的后端API服务

// @host      localhost:8081
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description 请在此输入 Bearer token
func main() {
	// 初始化日志系统
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Error initializing logger:", err)
	}

	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	db, err := config.InitDB()
	if err != nil {
		log.Fatal("Error connecting to database:", err)
	}

	// 设置全局数据库连接
	models.SetDB(db)

	// 运维通过环境变量指定初始管理员
	migrations.EnsureModerator()

	cfg := config.GetConfig()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	// 添加静态文件服务
	r.Static("/uploads", "./uploads")

	// 添加 swagger 路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 初始化各种服务
	activityService := activity.NewActivityService(db)
	mailService := mail.NewMailService()
	serialService := serial.NewSerialService(db)
	omdbService := omdb.NewOmdbService(db, cfg.Omdb.APIURL, cfg.Omdb.APIKey)

	// 初始化控制器
	authController := controllers.NewAuthController(db, activityService, mailService)
	userController := controllers.NewUserController(db, serialService)
	userManagementController := controllers.NewUserManagementController(db)
	serialController := controllers.NewSerialController(serialService, omdbService, activityService)
	genreController := controllers.NewGenreController(activityService)
	activityController := controllers.NewActivityController(activityService)

	// API v1 路由组
	v1 := r.Group("/api/v1")
	{
		// 公开路由
		v1.POST("/register", authController.Register)
		v1.POST("/login", authController.Login)
		v1.GET("/genres", genreController.GetAllGenres)

		// 目录读取接口对匿名开放，携带token时附加个性化字段
		catalog := v1.Group("")
		catalog.Use(middleware.OptionalAuthMiddleware())
		{
			catalog.GET("/shows", serialController.GetSerials)
			catalog.GET("/shows/:id", serialController.GetSerialByID)
			catalog.GET("/episodes/:id/comments", controllers.GetEpisodeComments)
		}

		// 需要登录的路由
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/user/info", authController.GetUserInfo)
			protected.PATCH("/user/profile", userController.UpdateProfile)
			protected.GET("/user/watchlist", userController.GetWatchlist)

			protected.POST("/shows/:id/watchlist", serialController.AddToWatchlist)
			protected.DELETE("/shows/:id/watchlist", serialController.RemoveFromWatchlist)
			protected.POST("/shows/:id/vote", serialController.Vote)
			protected.POST("/shows/request", serialController.RequestSerial)

			protected.POST("/episodes/:id/comments", controllers.CreateComment)
			protected.DELETE("/comments/:id", controllers.DeleteComment)

			// 流派修改在 handler 内部走权限判定，返回403而不是静默忽略
			protected.PUT("/genres/:id", genreController.UpdateGenre)
		}

		// 管理员路由组
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.RequireRoles(models.RoleModerator))
		{
			admin.GET("/users", userManagementController.GetAllUsers)
			admin.DELETE("/users/:id", userManagementController.DeleteUser)

			admin.GET("/stats", controllers.GetSystemStats)
			admin.GET("/system/status", controllers.GetSystemStatus)
			admin.GET("/logs", controllers.GetLogs)
			admin.GET("/activities", activityController.GetRecentActivities)
		}

		// ！！！单独注册WebSocket日志路由，不加任何中间件！！！
		v1.GET("/admin/logs/watch", controllers.WatchLogs)
	}

	r.Run(":8081")
}
