package http

import "github.com/gin-gonic/gin"

// Register attaches notification routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.GET("/unread_count", h.unreadCount)
	rg.GET("/stream", h.stream)
	rg.POST("/:id/read", h.markRead)
	rg.POST("/read_all", h.markAllRead)
}
