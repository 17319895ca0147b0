package linking

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	linkings := r.Group("/linkings")
	{
		linkings.POST("", h.Request)
		linkings.GET("", h.List)
		linkings.GET("/:id", h.Get)
		linkings.POST("/:id/respond", h.Respond)
	}
}
