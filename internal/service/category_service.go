package service

import (
	"context"
	"unicode/utf8"

	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/pkg/apperr"
)

type CategoryService struct {
	clock
	repos *repository.Repositories
}

func NewCategoryService(repos *repository.Repositories) *CategoryService {
	return &CategoryService{clock: defaultClock(), repos: repos}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repos.Categories.List(ctx)
}

// Create 新建分类，名称重复返回 conflict
func (s *CategoryService) Create(ctx context.Context, actor model.Actor, name, description string) (*model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := cleanCategoryName(name)
	if err != nil {
		return nil, err
	}
	description = plainText(description)
	if err := checkLength("description", description, 500); err != nil {
		return nil, err
	}
	c := &model.Category{Name: name, Description: description, CreatedAt: s.now()}
	if err := s.repos.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, actor model.Actor, id uint, name, description string) (*model.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	name, err := cleanCategoryName(name)
	if err != nil {
		return nil, err
	}
	description = plainText(description)
	if err := checkLength("description", description, 500); err != nil {
		return nil, err
	}
	if err := s.repos.Categories.Update(ctx, id, name, description); err != nil {
		return nil, err
	}
	return s.repos.Categories.GetByID(ctx, id)
}

// Delete 删除分类；仍被文章引用时返回 conflict
func (s *CategoryService) Delete(ctx context.Context, actor model.Actor, id uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	n, err := s.repos.News.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflict("category is still used by news articles")
	}
	return s.repos.Categories.Delete(ctx, id)
}

func cleanCategoryName(name string) (string, error) {
	name = plainText(name)
	switch {
	case name == "":
		return "", apperr.Validation("category name is required").WithField("name", "required")
	case utf8.RuneCountInString(name) > 100:
		return "", apperr.Validation("category name is too long").WithField("name", "max 100 characters")
	}
	return name, nil
}
