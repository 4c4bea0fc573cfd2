package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/handler"
	"mycoseed/internal/middleware"
	"mycoseed/internal/pkg/logger"
	"mycoseed/internal/service"
)

// Services 路由依赖的全部服务
type Services struct {
	Users         *service.UserService
	Communities   *service.CommunityService
	Joins         *service.JoinService
	Members       *service.MemberService
	Announcements *service.AnnouncementService
	Posts         *service.PostService
	Uploads       *service.UploadService
}

func InitRouter(s Services) *gin.Engine {
	r := gin.New()
	r.Use(logger.GinLogger(), logger.GinRecovery())

	user := handler.NewUserHandler(s.Users)
	community := handler.NewCommunityHandler(s.Communities, s.Joins, s.Members)
	announcement := handler.NewAnnouncementHandler(s.Announcements)
	post := handler.NewPostHandler(s.Posts)
	like := handler.NewPostLikeHandler(s.Posts)
	upload := handler.NewUploadHandler(s.Uploads)

	auth := middleware.AuthMiddleware(s.Users)
	optional := middleware.OptionalAuth(s.Users)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 用户相关接口
	userGroup := api.Group("/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/refresh", user.Refresh)
	}

	// 登录态接口
	authGroup := api.Group("/auth", auth)
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.GET("/me", user.Me)
		authGroup.POST("/change-password", user.ChangePassword)
	}

	// 社区：公开查询允许匿名
	publicCommunity := api.Group("/communities", optional)
	{
		publicCommunity.GET("", community.List)
		publicCommunity.GET("/:id", community.Get)
		publicCommunity.GET("/:id/posts", post.ListByCommunity)
	}

	communityGroup := api.Group("/communities", auth)
	{
		communityGroup.POST("", community.Create)
		communityGroup.POST("/join-by-invite", community.JoinByInvite)
		communityGroup.PATCH("/:id", community.Update)
		communityGroup.POST("/:id/join", community.Join)
		communityGroup.POST("/:id/leave", community.Leave)

		communityGroup.GET("/:id/members", community.ListMembers)
		communityGroup.POST("/:id/members", community.AddMember)
		communityGroup.PATCH("/:id/members/:userId", community.PatchMember)
		communityGroup.POST("/:id/transfer-super-admin", community.TransferSuperAdmin)

		communityGroup.GET("/:id/join-requests", community.ListJoinRequests)
		communityGroup.POST("/:id/join-requests/:requestId/approve", community.ApproveJoinRequest)
		communityGroup.POST("/:id/join-requests/:requestId/reject", community.RejectJoinRequest)

		communityGroup.GET("/:id/announcements", announcement.List)
		communityGroup.POST("/:id/announcements", announcement.Create)
		communityGroup.PATCH("/:id/announcements/:aid", announcement.Update)
		communityGroup.DELETE("/:id/announcements/:aid", announcement.Delete)

		communityGroup.POST("/:id/posts", post.CreatePost)
	}

	// 动态：读接口允许匿名访问公开社区
	publicPost := api.Group("/posts", optional)
	{
		publicPost.GET("/:postId", post.GetPost)
		publicPost.GET("/:postId/comments", post.ListComments)
		publicPost.GET("/:postId/likes", like.List)
	}

	postGroup := api.Group("/posts", auth)
	{
		postGroup.DELETE("/:postId", post.DeletePost)
		postGroup.POST("/:postId/comments", post.CreateComment)
		postGroup.POST("/:postId/like", like.Toggle)
		postGroup.POST("/:postId/pin", post.Pin)
		postGroup.POST("/:postId/unpin", post.Unpin)
	}

	api.DELETE("/comments/:commentId", auth, post.DeleteComment)

	uploadGroup := api.Group("/upload", auth)
	{
		uploadGroup.POST("/avatar", upload.Avatar)
		uploadGroup.POST("/post-image", upload.PostImage)
	}

	api.POST("/system-admins", auth, community.AddSystemAdmin)

	return r
}
