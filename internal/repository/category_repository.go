package repository

import (
	"context"

	"news-cms/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	orm *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{orm: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	return translate(r.orm.WithContext(ctx).Create(c).Error, "category")
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var c model.Category
	if err := r.orm.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, translate(err, "category")
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var items []model.Category
	err := r.orm.WithContext(ctx).Order("name ASC").Find(&items).Error
	return items, translate(err, "category")
}

func (r *CategoryRepository) Update(ctx context.Context, id uint, name, description string) error {
	res := r.orm.WithContext(ctx).Model(&model.Category{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "description": description})
	if res.Error != nil {
		return translate(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	res := r.orm.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return translate(res.Error, "category")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "category")
	}
	return nil
}
