package handler

import (
	"time"

	"news-cms/internal/service"
	"news-cms/pkg/apperr"
	"news-cms/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{service: s}
}

// Me 当前登录用户
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), mustActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

// GetProfile 获取个人资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.GetProfile(c.Request.Context(), mustActor(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateProfile 更新个人资料，dateOfBirth 格式为 2006-01-02
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req struct {
		AvatarURL   string `json:"avatarUrl"`
		Phone       string `json:"phone"`
		Address     string `json:"address"`
		DateOfBirth string `json:"dateOfBirth"`
		Bio         string `json:"bio"`
		Gender      string `json:"gender"`
		Settings    string `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	in := service.ProfileInput{
		AvatarURL: req.AvatarURL,
		Phone:     req.Phone,
		Address:   req.Address,
		Bio:       req.Bio,
		Gender:    req.Gender,
		Settings:  req.Settings,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse(time.DateOnly, req.DateOfBirth)
		if err != nil {
			response.Fail(c, apperr.Validation("invalid date of birth").WithField("dateOfBirth", "expected YYYY-MM-DD"))
			return
		}
		in.DateOfBirth = &dob
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), mustActor(c), in)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, profile)
}

// List 用户列表（管理员）
func (h *UserHandler) List(c *gin.Context) {
	page := pageFrom(c)
	users, total, err := h.service.List(c.Request.Context(), mustActor(c), page)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, newPageResult(users, total, page))
}

// Delete 删除用户（管理员）
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), mustActor(c), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "用户已删除", nil)
}

// ChangeRole 修改角色（管理员）
func (h *UserHandler) ChangeRole(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindFailed(c, err)
		return
	}
	if err := h.service.ChangeRole(c.Request.Context(), mustActor(c), id, req.Role); err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "role": req.Role})
}
