package chat

import "github.com/gin-gonic/gin"

// RegisterRoutes registers history replay under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	chats := r.Group("/chats")
	{
		chats.GET("/linking/:id/messages", h.LinkingMessages)
		chats.GET("/order/:id/messages", h.OrderMessages)
	}
}

// RegisterWSRoutes mounts the sockets. They authenticate themselves so
// that failures surface as close codes.
func RegisterWSRoutes(r gin.IRoutes, h *WSHandler) {
	r.GET("/ws/chat/linking/:id", h.ServeLinking)
	r.GET("/ws/chat/order/:id", h.ServeOrder)
}
