package router

import (
	"github.com/gin-gonic/gin"
	"github.com/mercadolocal/marketplace-service/internals/app/handlers"
	"github.com/mercadolocal/marketplace-service/internals/app/metrics"
	"github.com/mercadolocal/marketplace-service/internals/app/middleware"
	"github.com/mercadolocal/marketplace-service/internals/logger"
)

type Handlers struct {
	Users         *handlers.UserHandler
	Vendors       *handlers.VendorHandler
	Products      *handlers.ProductHandler
	Classifieds   *handlers.ClassifiedHandler
	Social        *handlers.SocialHandler
	Chat          *handlers.ChatHandler
	Coupons       *handlers.CouponHandler
	Notifications *handlers.NotificationHandler
	Uploads       *handlers.UploadHandler
	Payments      *handlers.PaymentHandler
	Health        gin.HandlerFunc
}

type Options struct {
	Auth    middleware.Authenticator
	Limiter *middleware.RateLimiter
	Origins []string
	Log     logger.Logger
}

func New(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.Instrument())
	r.Use(middleware.CORS(opts.Origins))
	r.Use(middleware.RequestLogger(opts.Log))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	if opts.Limiter != nil {
		api.Use(opts.Limiter.Handler())
	}

	auth := middleware.RequireAuth(opts.Auth)
	optional := middleware.OptionalAuth(opts.Auth)

	api.POST("/auth/register", h.Users.Register)
	api.POST("/auth/login", h.Users.Login)

	users := api.Group("/users/me", auth)
	users.GET("", h.Users.Me)
	users.PUT("", h.Users.UpdateProfile)
	users.PUT("/fcm-token", h.Users.UpdateFCMToken)
	users.GET("/following", h.Social.Following)
	users.GET("/favorites", h.Social.Favorites)
	users.GET("/vendor", h.Vendors.Mine)

	vendors := api.Group("/vendors")
	vendors.GET("", h.Vendors.List)
	vendors.GET("/featured", h.Vendors.Featured)
	vendors.GET("/:id", h.Vendors.Get)
	vendors.GET("/:id/qr", h.Vendors.QR)
	vendors.GET("/:id/products", optional, h.Products.ListByVendor)
	vendors.GET("/:id/coupons", h.Coupons.ListByVendor)
	vendors.POST("", auth, h.Vendors.Create)
	vendors.PUT("/:id", auth, h.Vendors.Update)
	vendors.DELETE("/:id", auth, h.Vendors.Delete)
	vendors.POST("/:id/products", auth, h.Products.Create)
	vendors.POST("/:id/coupons", auth, h.Coupons.Create)
	vendors.POST("/:id/follow", auth, h.Social.Follow)
	vendors.DELETE("/:id/follow", auth, h.Social.Unfollow)
	vendors.GET("/:id/follow", auth, h.Social.FollowStatus)
	vendors.GET("/:id/followers", auth, h.Social.Followers)
	vendors.POST("/:id/feature/checkout", auth, h.Vendors.FeatureCheckout)

	products := api.Group("/products")
	products.GET("", optional, h.Products.List)
	products.GET("/:id", h.Products.Get)
	products.PUT("/:id", auth, h.Products.Update)
	products.DELETE("/:id", auth, h.Products.Delete)
	products.POST("/:id/publish", auth, h.Products.Publish)
	products.POST("/:id/favorite", auth, h.Social.AddFavorite)
	products.DELETE("/:id/favorite", auth, h.Social.RemoveFavorite)
	products.GET("/:id/favorite", auth, h.Social.FavoriteStatus)

	classifieds := api.Group("/classifieds")
	classifieds.GET("", h.Classifieds.List)
	classifieds.GET("/mine", auth, h.Classifieds.Mine)
	classifieds.GET("/:id", h.Classifieds.Get)
	classifieds.POST("", auth, h.Classifieds.Create)
	classifieds.PUT("/:id", auth, h.Classifieds.Update)
	classifieds.DELETE("/:id", auth, h.Classifieds.Delete)
	classifieds.POST("/:id/renew", auth, h.Classifieds.Renew)

	// the websocket authenticates from its query string
	api.GET("/chat/ws", h.Chat.Socket)
	chat := api.Group("/chat", auth)
	chat.POST("/conversations", h.Chat.Start)
	chat.GET("/conversations", h.Chat.Conversations)
	chat.GET("/conversations/:id/messages", h.Chat.Messages)
	chat.POST("/conversations/:id/messages", h.Chat.Send)
	chat.GET("/unread", h.Chat.Unread)

	coupons := api.Group("/coupons")
	coupons.GET("", h.Coupons.ListActive)
	coupons.GET("/:code", h.Coupons.Get)
	coupons.GET("/:code/qr", h.Coupons.QR)
	coupons.POST("/:code/redeem", auth, h.Coupons.Redeem)
	coupons.DELETE("/:id", auth, h.Coupons.Delete)

	notifications := api.Group("/notifications", auth)
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.PUT("/read-all", h.Notifications.MarkAllRead)
	notifications.PUT("/:id/read", h.Notifications.MarkRead)
	notifications.DELETE("/:id", h.Notifications.Delete)

	api.POST("/uploads/image", auth, h.Uploads.Image)
	api.POST("/payments/webhook", h.Payments.Webhook)

	return r
}
