package upload

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	uploads := r.Group("/uploads")
	{
		uploads.GET("", h.ListMy)
		uploads.GET("/upload-url", h.UploadURL)
	}
}
