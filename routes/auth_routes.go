package routes

import (
	"github.com/gin-gonic/gin"

	"kyc-hub/controllers"
	middlewares "kyc-hub/middleware"
)

func SetupAuthRoutes(api *gin.RouterGroup, h *controllers.Handler, auth middlewares.Authenticator, opts Options) {
	public := api.Group("")
	if opts.AuthRateLimit > 0 {
		public.Use(middlewares.RateLimit(opts.AuthRateLimit, opts.AuthRateWindow))
	}
	public.POST("/signup", h.Signup)
	public.POST("/login", h.Login)
	public.POST("/verify-otp", h.VerifyOTP)
	public.POST("/resend-otp", h.ResendOTP)

	private := api.Group("", middlewares.AuthMiddleware(auth))
	private.GET("/me", h.Me)
	private.POST("/logout", h.Logout)
	private.POST("/change-password", h.ChangePassword)
}
