package handler

import (
	"strconv"

	"news-cms/internal/moderation"
	"news-cms/internal/service"
	"news-cms/pkg/apperr"
	"news-cms/pkg/jwt"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

// ReaderHeader 匿名读者的阅读会话标识
const ReaderHeader = "X-Reader-Id"

type NewsHandler struct {
	service *service.NewsService
}

func NewNewsHandler(s *service.NewsService) *NewsHandler {
	return &NewsHandler{service: s}
}

type newsRequest struct {
	Title      *string `json:"title"`
	Content    *string `json:"content"`
	ImageURL   *string `json:"imageUrl"`
	CategoryID *uint   `json:"categoryId"`
}

// Create 发布文章
func (h *NewsHandler) Create(c *gin.Context) {
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	in := service.NewsInput{CategoryID: req.CategoryID}
	if req.Title != nil {
		in.Title = *req.Title
	}
	if req.Content != nil {
		in.Content = *req.Content
	}
	if req.ImageURL != nil {
		in.ImageURL = *req.ImageURL
	}
	news, err := h.service.Create(c.Request.Context(), mustActor(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "文章已提交", news)
}

// Edit 编辑文章
func (h *NewsHandler) Edit(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req newsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	news, err := h.service.Edit(c.Request.Context(), mustActor(c), id, service.NewsPatch{
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, news)
}

// Get 文章详情
func (h *NewsHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	news, err := h.service.Get(c.Request.Context(), optionalActor(c), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, news)
}

// List 公开文章列表，支持 ?category= 筛选
func (h *NewsHandler) List(c *gin.Context) {
	var categoryID *uint
	if raw := c.Query("category"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			response.Fail(c, apperr.Validation("invalid category").WithField("category", "must be a positive integer"))
			return
		}
		id := uint(v)
		categoryID = &id
	}
	page := pageFrom(c)
	items, total, err := h.service.List(c.Request.Context(), categoryID, page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, newPageResult(items, total, page))
}

// Mine 当前用户的文章
func (h *NewsHandler) Mine(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.service.Mine(c.Request.Context(), mustActor(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, newPageResult(items, total, page))
}

// Pending 审核队列
func (h *NewsHandler) Pending(c *gin.Context) {
	page := pageFrom(c)
	items, total, err := h.service.Pending(c.Request.Context(), mustActor(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, newPageResult(items, total, page))
}

// Transition 返回执行指定审核动作的处理函数
func (h *NewsHandler) Transition(action moderation.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			response.Fail(c, err)
			return
		}
		news, err := h.service.Transition(c.Request.Context(), mustActor(c), id, action)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Success(c, gin.H{
			"news":  news,
			"state": moderation.StateOf(moderation.FlagsOf(news)),
		})
	}
}

// RecordRead 上报一次阅读
// 阅读会话依次取登录会话、X-Reader-Id 请求头、客户端IP
func (h *NewsHandler) RecordRead(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	reader := jwt.GetSessionToken(c)
	if reader == "" {
		reader = c.GetHeader(ReaderHeader)
	}
	if reader == "" {
		reader = c.ClientIP()
	}
	counted, err := h.service.RecordRead(c.Request.Context(), id, reader)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"counted": counted})
}
