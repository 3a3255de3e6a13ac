package handler

import (
	"time"

	"news-cms/internal/model"
	"news-cms/internal/service"
	"news-cms/internal/thread"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	service *service.CommentService
}

func NewCommentHandler(s *service.CommentService) *CommentHandler {
	return &CommentHandler{service: s}
}

// CommentView 评论树节点的响应结构；游客邮箱只在审核视图中返回
type CommentView struct {
	ID         uint           `json:"id"`
	Content    string         `json:"content"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  *time.Time     `json:"updatedAt,omitempty"`
	ParentID   *uint          `json:"parentId,omitempty"`
	UserID     *uint          `json:"userId,omitempty"`
	GuestName  string         `json:"guestName,omitempty"`
	GuestEmail string         `json:"guestEmail,omitempty"`
	IsDeleted  bool           `json:"isDeleted,omitempty"`
	IsHidden   bool           `json:"isHidden,omitempty"`
	Replies    []*CommentView `json:"replies"`
}

// Add 发表评论，游客需提供昵称与邮箱
func (h *CommentHandler) Add(c *gin.Context) {
	var req struct {
		NewsID     uint   `json:"newsId" binding:"required"`
		Content    string `json:"content"`
		ParentID   *uint  `json:"parentId"`
		GuestName  string `json:"guestName"`
		GuestEmail string `json:"guestEmail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	author := model.Author{GuestName: req.GuestName, GuestEmail: req.GuestEmail}
	if actor := optionalActor(c); actor != nil {
		uid := actor.UserID
		author.UserID = &uid
	}
	comment, err := h.service.AddComment(c.Request.Context(), req.NewsID, author, req.Content, req.ParentID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, "评论已发布", viewOf(comment, false))
}

// Edit 修改评论
func (h *CommentHandler) Edit(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	comment, err := h.service.EditComment(c.Request.Context(), id, mustActor(c), req.Content)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, viewOf(comment, false))
}

// Delete 软删除评论
func (h *CommentHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.service.SoftDeleteComment(c.Request.Context(), id, mustActor(c)); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "评论已删除", nil)
}

// Hide 屏蔽评论
func (h *CommentHandler) Hide(c *gin.Context) {
	h.toggleHidden(c, true)
}

// Unhide 取消屏蔽
func (h *CommentHandler) Unhide(c *gin.Context) {
	h.toggleHidden(c, false)
}

// Thread 文章的公开评论树
func (h *CommentHandler) Thread(c *gin.Context) {
	h.thread(c, false)
}

// ModerationThread 含已删除和已隐藏评论的完整评论树
func (h *CommentHandler) ModerationThread(c *gin.Context) {
	h.thread(c, true)
}

func (h *CommentHandler) thread(c *gin.Context, privileged bool) {
	newsID, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	forest, err := h.service.ListThread(c.Request.Context(), newsID, privileged)
	if err != nil {
		response.Fail(c, err)
		return
	}
	views := make([]*CommentView, 0, len(forest.Roots()))
	for node := range forest.All() {
		views = append(views, treeOf(node, privileged))
	}
	response.Success(c, gin.H{"comments": views, "total": forest.Len()})
}

func (h *CommentHandler) toggleHidden(c *gin.Context, hidden bool) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	actor := mustActor(c)
	if hidden {
		err = h.service.HideComment(c.Request.Context(), id, actor)
	} else {
		err = h.service.UnhideComment(c.Request.Context(), id, actor)
	}
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "isHidden": hidden})
}

func treeOf(node *thread.Node, privileged bool) *CommentView {
	v := viewOf(node.Comment, privileged)
	for _, r := range node.Replies {
		v.Replies = append(v.Replies, treeOf(r, privileged))
	}
	return v
}

func viewOf(c *model.Comment, privileged bool) *CommentView {
	v := &CommentView{
		ID:        c.ID,
		Content:   c.Content,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		ParentID:  c.ParentID,
		UserID:    c.UserID,
		GuestName: c.GuestName,
		Replies:   []*CommentView{},
	}
	if privileged {
		v.GuestEmail = c.GuestEmail
		v.IsDeleted = c.IsDeleted
		v.IsHidden = c.IsHidden
	}
	return v
}
