package handler

import (
	"fmt"

	"news-cms/config"
	"news-cms/internal/moderation"
	"news-cms/pkg/jwt"
	"news-cms/pkg/logger"
	"news-cms/pkg/ratelimit"
	"news-cms/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Router 路由依赖
type Router struct {
	Config        *config.Config
	Auth          *jwt.Authenticator
	Hub           *websocket.Hub
	Redis         *redis.Client // 可为 nil，限流退回内存存储
	AuthH         *AuthHandler
	Users         *UserHandler
	News          *NewsHandler
	Comments      *CommentHandler
	Categories    *CategoryHandler
	Sharing       *SharingHandler
	Subscriptions *SubscriptionHandler
	Health        *HealthHandler
}

// Setup 创建 gin 引擎并注册全部路由
func (r *Router) Setup() (*gin.Engine, error) {
	loginLimit, err := ratelimit.New(r.Config.RateLimit.Login, "login", r.Redis)
	if err != nil {
		return nil, fmt.Errorf("登录限流配置错误: %w", err)
	}
	commentLimit, err := ratelimit.New(r.Config.RateLimit.Comment, "comment", r.Redis)
	if err != nil {
		return nil, fmt.Errorf("评论限流配置错误: %w", err)
	}
	codeLimit, err := ratelimit.New(r.Config.RateLimit.Code, "code", r.Redis)
	if err != nil {
		return nil, fmt.Errorf("验证码限流配置错误: %w", err)
	}

	router := gin.New()
	router.Use(logger.Recovery())
	router.Use(logger.RequestLogger())

	router.GET("/health", r.Health.Health)

	requireAuth := r.Auth.RequireAuth()
	optionalAuth := r.Auth.OptionalAuth()
	requireAdmin := r.Auth.RequireAdmin()

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.AuthH.Register)
			auth.POST("/login", loginLimit, r.AuthH.Login)
			auth.POST("/social", loginLimit, r.AuthH.SocialLogin)
			auth.POST("/codes", codeLimit, r.AuthH.RequestCode)
			auth.POST("/verify", codeLimit, r.AuthH.VerifyEmail)
			auth.POST("/password/reset", codeLimit, r.AuthH.ResetPassword)
			auth.POST("/logout", requireAuth, r.AuthH.Logout)
		}

		users := v1.Group("/users/me", requireAuth)
		{
			users.GET("", r.Users.Me)
			users.GET("/profile", r.Users.GetProfile)
			users.PUT("/profile", r.Users.UpdateProfile)
			users.POST("/social", r.AuthH.LinkSocial)
		}

		news := v1.Group("/news")
		{
			news.GET("", r.News.List)
			news.GET("/mine", requireAuth, r.News.Mine)
			news.GET("/:id", optionalAuth, r.News.Get)
			news.POST("", requireAuth, r.News.Create)
			news.PATCH("/:id", requireAuth, r.News.Edit)
			news.POST("/:id/approve", requireAuth, r.News.Transition(moderation.ActionApprove))
			news.POST("/:id/archive", requireAuth, r.News.Transition(moderation.ActionArchive))
			news.POST("/:id/repost", requireAuth, r.News.Transition(moderation.ActionRepost))
			news.DELETE("/:id", requireAuth, r.News.Transition(moderation.ActionDelete))
			news.POST("/:id/read", optionalAuth, r.News.RecordRead)
			news.POST("/:id/share", requireAuth, r.Sharing.Share)
			news.GET("/:id/comments", r.Comments.Thread)
		}

		comments := v1.Group("/comments")
		{
			comments.POST("", commentLimit, optionalAuth, r.Comments.Add)
			comments.PATCH("/:id", requireAuth, r.Comments.Edit)
			comments.DELETE("/:id", requireAuth, r.Comments.Delete)
			comments.POST("/:id/hide", requireAuth, requireAdmin, r.Comments.Hide)
			comments.POST("/:id/unhide", requireAuth, requireAdmin, r.Comments.Unhide)
		}

		shares := v1.Group("/shares", requireAuth)
		{
			shares.GET("", r.Sharing.Inbox)
			shares.PUT("/:id/read", r.Sharing.MarkRead)
		}

		subs := v1.Group("/subscriptions")
		{
			subs.POST("", r.Subscriptions.Subscribe)
			subs.DELETE("", r.Subscriptions.Unsubscribe)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", r.Categories.List)
			categories.POST("", requireAuth, requireAdmin, r.Categories.Create)
			categories.PATCH("/:id", requireAuth, requireAdmin, r.Categories.Update)
			categories.DELETE("/:id", requireAuth, requireAdmin, r.Categories.Delete)
		}

		admin := v1.Group("/admin", requireAuth, requireAdmin)
		{
			admin.GET("/news/pending", r.News.Pending)
			admin.GET("/news/:id/comments", r.Comments.ModerationThread)
			admin.GET("/users", r.Users.List)
			admin.DELETE("/users/:id", r.Users.Delete)
			admin.PUT("/users/:id/role", r.Users.ChangeRole)
			admin.GET("/subscriptions", r.Subscriptions.List)
		}
	}

	// 浏览器通过 ?token= 传递令牌
	router.GET("/ws", requireAuth, r.Hub.Handler(r.Config.WebSocket))

	return router, nil
}
