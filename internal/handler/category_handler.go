package handler

import (
	"news-cms/internal/service"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service *service.CategoryService
}

func NewCategoryHandler(s *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: s}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, items)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	cat, err := h.service.Create(c.Request.Context(), mustActor(c), req.Name, req.Description)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "分类已创建", cat)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	cat, err := h.service.Update(c.Request.Context(), mustActor(c), id, req.Name, req.Description)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, cat)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), mustActor(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "分类已删除", nil)
}
