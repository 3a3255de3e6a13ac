package service

import (
	"context"

	"news-cms/internal/model"
	"news-cms/internal/repository"
)

type SubscriptionService struct {
	clock
	repos *repository.Repositories
}

func NewSubscriptionService(repos *repository.Repositories) *SubscriptionService {
	return &SubscriptionService{clock: defaultClock(), repos: repos}
}

// Subscribe 订阅，邮箱已订阅时返回 conflict
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (*model.Subscription, error) {
	email = normalizeEmail(email)
	if err := validateEmail("email", email); err != nil {
		return nil, err
	}
	sub := &model.Subscription{Email: email, SubscribedAt: s.now()}
	if err := s.repos.Subscriptions.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Unsubscribe 退订，未订阅时返回 not found
func (s *SubscriptionService) Unsubscribe(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateEmail("email", email); err != nil {
		return err
	}
	return s.repos.Subscriptions.DeleteByEmail(ctx, email)
}

func (s *SubscriptionService) List(ctx context.Context, actor model.Actor, page repository.Page) ([]model.Subscription, int64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, 0, err
	}
	return s.repos.Subscriptions.List(ctx, page)
}
