package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"news-cms/internal/model"
	"news-cms/internal/moderation"
	"news-cms/internal/repository"
	"news-cms/pkg/apperr"
	"news-cms/pkg/logger"
	"news-cms/pkg/redis"
)

// NewsService 文章服务
type NewsService struct {
	clock
	repos *repository.Repositories
	reads *redis.ReadTracker
}

// NewsInput 新建文章参数
type NewsInput struct {
	Title      string
	Content    string
	ImageURL   string
	CategoryID *uint
}

// NewsPatch 编辑文章参数，nil 字段保持不变
type NewsPatch struct {
	Title      *string
	Content    *string
	ImageURL   *string
	CategoryID *uint
}

// NewNewsService 创建NewsService实例，reads 可为 nil
func NewNewsService(repos *repository.Repositories, reads *redis.ReadTracker) *NewsService {
	return &NewsService{clock: defaultClock(), repos: repos, reads: reads}
}

// Create 发布文章；管理员发布的文章直接通过审核
func (s *NewsService) Create(ctx context.Context, actor model.Actor, in NewsInput) (*model.News, error) {
	title, err := cleanTitle(in.Title)
	if err != nil {
		return nil, err
	}
	content, err := cleanBody(in.Content)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	news := &model.News{
		Title:      title,
		Content:    content,
		ImageURL:   strings.TrimSpace(in.ImageURL),
		AuthorID:   actor.UserID,
		CategoryID: in.CategoryID,
		IsApproved: actor.IsAdmin(),
		CreatedAt:  s.now(),
	}
	if err := s.repos.News.Create(ctx, news); err != nil {
		return nil, err
	}
	return news, nil
}

// Edit 编辑文章；作者编辑后文章回到待审核状态
func (s *NewsService) Edit(ctx context.Context, actor model.Actor, id uint, patch NewsPatch) (*model.News, error) {
	news, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && news.AuthorID != actor.UserID {
		return nil, apperr.Forbidden("only the author or an admin may edit this article")
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		title, err := cleanTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if patch.Content != nil {
		content, err := cleanBody(*patch.Content)
		if err != nil {
			return nil, err
		}
		fields["content"] = content
	}
	if patch.ImageURL != nil {
		fields["image_url"] = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, patch.CategoryID); err != nil {
			return nil, err
		}
		fields["category_id"] = *patch.CategoryID
	}
	if len(fields) == 0 {
		return nil, apperr.Validation("nothing to update")
	}
	if actor.IsAdmin() {
		if err := s.repos.News.UpdateContent(ctx, id, fields, s.now()); err != nil {
			return nil, err
		}
		return s.repos.News.GetByID(ctx, id)
	}

	plan, err := moderation.Plan(moderation.FlagsOf(news), moderation.ActionResubmit)
	if err != nil {
		return nil, err
	}
	at := s.now()
	ok, err := s.repos.News.ResubmitContent(ctx, id, fields, plan, at)
	if err != nil {
		return nil, err
	}
	current, err := s.repos.News.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// MySQL 在值未变化时报告0行，库中已是本次写入的结果即视为成功
	written := moderation.FlagsOf(current) == plan.To && current.UpdatedAt != nil && current.UpdatedAt.Equal(at)
	if !ok && !written {
		if current.IsDeleted {
			return nil, apperr.NotFound("news")
		}
		return nil, apperr.Conflict("news article was modified concurrently")
	}
	return current, nil
}

// Get 获取单篇文章
// 公开可见与已归档的文章任何人可读；待审核的只有作者与管理员可读
func (s *NewsService) Get(ctx context.Context, viewer *model.Actor, id uint) (*model.News, error) {
	news, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if news.IsApproved || news.IsArchived {
		return news, nil
	}
	if viewer != nil && (viewer.IsAdmin() || viewer.UserID == news.AuthorID) {
		return news, nil
	}
	return nil, apperr.NotFound("news")
}

// List 公开列表
func (s *NewsService) List(ctx context.Context, categoryID *uint, page repository.Page) ([]model.News, int64, error) {
	return s.repos.News.ListVisible(ctx, repository.NewsFilter{CategoryID: categoryID}, page)
}

// Pending 审核队列，仅管理员
func (s *NewsService) Pending(ctx context.Context, actor model.Actor, page repository.Page) ([]model.News, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.repos.News.ListPending(ctx, page)
}

// Mine 作者自己的文章
func (s *NewsService) Mine(ctx context.Context, actor model.Actor, page repository.Page) ([]model.News, int64, error) {
	return s.repos.News.ListByAuthor(ctx, actor.UserID, page)
}

// Transition 执行审核动作
// approve 仅管理员；archive / repost / delete 作者或管理员
func (s *NewsService) Transition(ctx context.Context, actor model.Actor, id uint, action moderation.Action) (*model.News, error) {
	news, err := s.live(ctx, id)
	if err != nil {
		return nil, err
	}
	if action == moderation.ActionApprove {
		if err := requireAdmin(actor); err != nil {
			return nil, err
		}
	} else if !actor.IsAdmin() && news.AuthorID != actor.UserID {
		return nil, apperr.Forbidden("only the author or an admin may change this article")
	}

	plan, err := moderation.Plan(moderation.FlagsOf(news), action)
	if err != nil {
		return nil, err
	}
	ok, err := s.repos.News.ApplyTransition(ctx, id, plan)
	if err != nil {
		return nil, err
	}
	if !ok {
		// 条件更新未命中：状态已被并发修改，按最新状态重新判定
		current, err := s.repos.News.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if _, err := moderation.Plan(moderation.FlagsOf(current), action); err != nil {
			return nil, err
		}
		return nil, apperr.Conflict("news article was modified concurrently")
	}

	news.IsApproved = plan.To.IsApproved
	news.IsArchived = plan.To.IsArchived
	news.IsDeleted = plan.To.IsDeleted
	logger.Info("文章状态变更",
		zap.Uint("news_id", id),
		zap.Uint("actor_id", actor.UserID),
		zap.String("action", string(action)),
		zap.String("state", string(moderation.StateOf(plan.To))),
	)
	return news, nil
}

// RecordRead 记录一次阅读，返回是否计数
// readerKey 标识阅读会话，同一会话重复上报只计一次（依赖 Redis，尽力而为）
func (s *NewsService) RecordRead(ctx context.Context, id uint, readerKey string) (bool, error) {
	first, err := s.reads.FirstRead(ctx, id, readerKey)
	if err != nil {
		logger.Warn("阅读去重失败，按首次阅读处理", zap.Uint("news_id", id), zap.Error(err))
	}
	if !first {
		return false, nil
	}
	ok, err := s.repos.News.IncrementReadCount(ctx, id)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, apperr.NotFound("news")
	}
	return true, nil
}

// live 获取未删除的文章
func (s *NewsService) live(ctx context.Context, id uint) (*model.News, error) {
	news, err := s.repos.News.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if news.IsDeleted {
		return nil, apperr.NotFound("news")
	}
	return news, nil
}

func (s *NewsService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	if _, err := s.repos.Categories.GetByID(ctx, *id); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.Validation("unknown category").WithField("categoryId", "not found")
		}
		return err
	}
	return nil
}

func cleanTitle(title string) (string, error) {
	t := plainText(title)
	switch {
	case t == "":
		return "", apperr.Validation("title is required").WithField("title", "required")
	case utf8.RuneCountInString(t) > 255:
		return "", apperr.Validation("title is too long").WithField("title", "max 255 characters")
	}
	return t, nil
}

func cleanBody(content string) (string, error) {
	c := strings.TrimSpace(ugcPolicy.Sanitize(content))
	if c == "" {
		return "", apperr.Validation("content is required").WithField("content", "required")
	}
	return c, nil
}
