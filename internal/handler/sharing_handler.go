package handler

import (
	"news-cms/internal/service"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

type SharingHandler struct {
	service *service.SharingService
}

func NewSharingHandler(s *service.SharingService) *SharingHandler {
	return &SharingHandler{service: s}
}

// Share 分享文章到邮箱
func (h *SharingHandler) Share(c *gin.Context) {
	newsID, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req struct {
		RecipientEmail string `json:"recipientEmail" binding:"required"`
		Message        string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	share, err := h.service.Share(c.Request.Context(), mustActor(c), newsID, req.RecipientEmail, req.Message)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "分享成功", share)
}

// Inbox 收到的分享
func (h *SharingHandler) Inbox(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.service.Inbox(c.Request.Context(), mustActor(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, newPageResult(items, total, page))
}

// MarkRead 设置分享已读/未读，请求体缺省视为已读
func (h *SharingHandler) MarkRead(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	req := struct {
		Read *bool `json:"read"`
	}{}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BindFailed(c, err)
			return
		}
	}
	read := req.Read == nil || *req.Read
	if err := h.service.MarkShareRead(c.Request.Context(), mustActor(c), id, read); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "isRead": read})
}
