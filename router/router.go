package router

import (
	"net/http"
	"time"

	"infraspend/api"
	"infraspend/config"
	_ "infraspend/docs"
	"infraspend/middleware"
	"infraspend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter wires every route onto a new engine
func SetupRouter(cfg *config.Config, svc *service.Service) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()
	r.Use(CORSMiddleware(cfg.Server.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if cfg.Storage.Dir != "" && cfg.Storage.URLPrefix != "" {
		r.Static(cfg.Storage.URLPrefix, cfg.Storage.Dir)
	}

	apiGroup := r.Group("/api")

	authHandler := api.NewAuthHandler(cfg, svc)
	auth := apiGroup.Group("/auth")
	{
		auth.POST("/login",
			middleware.LoginRateLimit(cfg.Security.LoginMaxAttempts, cfg.Security.LoginWindow),
			authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	authorized := apiGroup.Group("")
	authorized.Use(middleware.JWTAuth(), middleware.LoadActor(svc.CurrentUser))
	{
		authorized.GET("/auth/me", authHandler.Me)

		userHandler := api.NewUserHandler(svc)
		users := authorized.Group("/users")
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
		}

		projectHandler := api.NewProjectHandler(svc)
		projects := authorized.Group("/projects")
		{
			projects.GET("", projectHandler.List)
			projects.POST("", projectHandler.Create)
			projects.GET("/:id", projectHandler.Get)
			projects.PUT("/:id", projectHandler.Update)
			projects.DELETE("/:id", projectHandler.Delete)
			projects.GET("/:id/expenditures", projectHandler.Expenditures)
			projects.GET("/:id/report", projectHandler.Report)
		}

		expenditureHandler := api.NewExpenditureHandler(svc, cfg.Storage.MaxUploadMB<<20)
		expenditures := authorized.Group("/expenditures")
		{
			expenditures.GET("", expenditureHandler.List)
			expenditures.POST("", expenditureHandler.Create)
			expenditures.GET("/:id", expenditureHandler.Get)
			expenditures.PUT("/:id", expenditureHandler.Update)
			expenditures.DELETE("/:id", expenditureHandler.Delete)
			expenditures.PATCH("/:id/status", expenditureHandler.SetStatus)
			expenditures.POST("/:id/attachments", expenditureHandler.UploadAttachment)
		}

		categoryHandler := api.NewCategoryHandler(svc)
		categories := authorized.Group("/categories")
		{
			categories.GET("", categoryHandler.List)
			categories.POST("", categoryHandler.Create)
			categories.GET("/:id", categoryHandler.Get)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		dashboardHandler := api.NewDashboardHandler(svc)
		authorized.GET("/dashboard", dashboardHandler.Get)
	}

	return r
}

// CORSMiddleware allows the configured origins with credentials. With no
// origins configured any origin is allowed, without cookies.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	conf := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders: []string{"Authorization", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
		conf.AllowCredentials = true
	}
	return cors.New(conf)
}
