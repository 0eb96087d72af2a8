package routes

import (
	"community_tool_share/app"
	"community_tool_share/controllers"
	"time"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	Mount(r, s, app.TouchLastSeen(a.Repo, a.RDB, 5*time.Minute))
}

// Mount 挂载全部路由；测试里直接传入 Srv
func Mount(r *gin.Engine, s *controllers.Srv, extra ...gin.HandlerFunc) {
	authMW := app.AuthRequired(s.AppSess, s.Svc.Users)
	adminMW := app.AdminOnly()
	user := append([]gin.HandlerFunc{authMW}, extra...)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	// ------------------------------
	// 认证
	// ------------------------------
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", s.Register)
		auth.POST("/login", s.Login)
	}
	authed := auth.Group("", user...)
	{
		authed.POST("/logout", s.Logout)
		authed.GET("/whoami", s.WhoAmI)
		authed.GET("/profile", s.Profile)
		authed.PUT("/profile", s.UpdateProfile)
	}

	wa := r.Group("/webauthn")
	{
		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
	}
	creds := r.Group("/api/credentials", user...)
	{
		creds.POST("/add/begin", s.BeginAddCredential)
		creds.POST("/add/finish", s.FinishAddCredential)
	}

	r.GET("/api/announcements/public", s.PublicAnnouncements)

	// ------------------------------
	// 工具 / 借用 / 评价
	// ------------------------------
	tools := r.Group("/api/tools", user...)
	{
		tools.GET("", s.ListTools) // ?keyword=&category=
		tools.GET("/my", s.MyTools)
		tools.GET("/:id", s.GetTool)
		tools.POST("", s.PublishTool)
		tools.PUT("/:id", s.UpdateTool)
		tools.DELETE("/:id", s.DeleteTool)
	}

	borrows := r.Group("/api/borrows", user...)
	{
		borrows.POST("", s.ApplyBorrow)
		borrows.GET("/my", s.MyBorrows)
		borrows.GET("/received", s.ReceivedBorrows)
		borrows.PUT("/:id/approve", s.ApproveBorrow())
		borrows.PUT("/:id/reject", s.RejectBorrow())
		borrows.PUT("/:id/pickup", s.ConfirmPickup())
		borrows.PUT("/:id/return", s.ConfirmReturn())
	}

	reviews := r.Group("/api/reviews", user...)
	{
		reviews.POST("", s.CreateReview)
		reviews.GET("/tool/:toolId", s.ToolReviews)
		reviews.GET("/my", s.MyReviews)
	}

	notes := r.Group("/api/notifications", user...)
	{
		notes.GET("", s.ListNotifications)
		notes.GET("/unread-count", s.UnreadCount)
		notes.PUT("/read-all", s.MarkAllNotificationsRead)
		notes.PUT("/:id/read", s.MarkNotificationRead)
	}

	points := r.Group("/api/points", user...)
	{
		points.GET("/ranking", s.PointRanking)
		points.GET("/my", s.MyPoints)
		points.GET("/balance", s.PointBalance)
	}

	// ------------------------------
	// 管理端
	// ------------------------------
	adminChain := append(append([]gin.HandlerFunc{}, user...), adminMW)
	admin := r.Group("/api/admin", adminChain...)
	{
		admin.GET("/dashboard", s.Dashboard)
		admin.GET("/users", s.ListUsers) // ?q=&page=&size=
		admin.GET("/users/:id", s.GetUser)
		admin.PUT("/users/:id/status", s.SetUserStatus)
		admin.GET("/tools", s.AdminTools) // ?status=
		admin.PUT("/tools/:id/audit", s.AuditTool)
		admin.PUT("/tools/:id/offline", s.ForceOffline)
		admin.GET("/announcements", s.AdminAnnouncements)
		admin.POST("/announcements", s.CreateAnnouncement)
		admin.PUT("/announcements/:id", s.UpdateAnnouncement)
		admin.DELETE("/announcements/:id", s.DeleteAnnouncement)
		admin.GET("/audit-logs", s.AuditLogs) // ?limit=
	}
}
