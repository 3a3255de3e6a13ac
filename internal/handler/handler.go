package handler

import (
	"strconv"

	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/pkg/apperr"
	"news-cms/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// PageResult 分页响应
type PageResult struct {
	Items    interface{} `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func newPageResult(items interface{}, total int64, page repository.Page) PageResult {
	p := page.Normalize()
	return PageResult{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}

// pageFrom 读取 ?page=&pageSize= 参数，非法值交给 Normalize 修正
func pageFrom(c *gin.Context) repository.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	return repository.Page{Page: page, PageSize: size}.Normalize()
}

// idParam 解析路径中的数字ID
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id").WithField(name, "must be a positive integer")
	}
	return uint(id), nil
}

// mustActor 取认证中间件写入的操作者；路由保证已登录
func mustActor(c *gin.Context) model.Actor {
	actor, _ := jwt.GetActor(c)
	return actor
}

// optionalActor 游客时返回 nil
func optionalActor(c *gin.Context) *model.Actor {
	if actor, ok := jwt.GetActor(c); ok {
		return &actor
	}
	return nil
}
