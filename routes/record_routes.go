package routes

import (
	"github.com/gin-gonic/gin"

	"kyc-hub/controllers"
	middlewares "kyc-hub/middleware"
)

func SetupRecordRoutes(api *gin.RouterGroup, h *controllers.Handler, auth middlewares.Authenticator) {
	g := api.Group("", middlewares.AuthMiddleware(auth))
	g.POST("/extract", h.Extract)
	g.POST("/validate-file", h.ValidateFile)

	g.GET("/records", h.ListRecords)
	g.GET("/records/stats", h.RecordStats)
	g.GET("/records/:id", h.GetRecord)
	g.DELETE("/records/:id", h.DeleteRecord)
	g.POST("/records/:id/submit-review", h.SubmitForReview)

	g.GET("/alerts", h.MyAlerts)
}

func SetupAdminRoutes(api *gin.RouterGroup, h *controllers.Handler, auth middlewares.Authenticator) {
	compliance := api.Group("/compliance", middlewares.AuthMiddleware(auth), middlewares.AdminRequired())
	compliance.GET("/stats", h.ComplianceStats)
	compliance.GET("/alerts", h.ComplianceAlerts)
	compliance.POST("/alerts/:id/resolve", h.ResolveAlert)

	admin := api.Group("/admin", middlewares.AuthMiddleware(auth), middlewares.AdminRequired())
	admin.GET("/queue", h.ReviewQueue)
	admin.POST("/record/:id/decision", h.DecideRecord)
	admin.GET("/records/export", h.ExportRecords)
	admin.GET("/records/search", h.SearchRecords)
	admin.GET("/users", h.ListUsers)
	admin.PUT("/users/:id/role", h.UpdateUserRole)
	admin.GET("/audit-trail", h.AuditTrail)
	admin.GET("/blacklist", h.ListBlacklist)
	admin.POST("/blacklist", h.AddToBlacklist)
	admin.DELETE("/blacklist/:number", h.RemoveFromBlacklist)
}
