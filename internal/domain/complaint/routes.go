package complaint

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	complaints := r.Group("/complaints")
	{
		complaints.POST("", h.Create)

		complaints.GET("/mine", h.Mine)
		complaints.GET("/assigned", h.AssignedToMe)
		complaints.GET("/escalated", h.EscalatedPool)
		complaints.GET("/managed", h.Managed)
		complaints.GET("/company", h.Company)

		complaints.GET("/:id", h.Get)
		complaints.GET("/:id/history", h.History)
		complaints.POST("/:id/escalate", h.Escalate)
		complaints.POST("/:id/claim", h.Claim)
		complaints.POST("/:id/resolve", h.Resolve)
		complaints.POST("/:id/close", h.Close)
	}
}
