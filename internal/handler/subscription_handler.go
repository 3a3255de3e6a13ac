package handler

import (
	"news-cms/internal/service"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	service *service.SubscriptionService
}

func NewSubscriptionHandler(s *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{service: s}
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	sub, err := h.service.Subscribe(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "订阅成功", sub)
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.service.Unsubscribe(c.Request.Context(), req.Email); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "已退订", nil)
}

// List 订阅列表（管理员）
func (h *SubscriptionHandler) List(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.service.List(c.Request.Context(), mustActor(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, newPageResult(items, total, page))
}
