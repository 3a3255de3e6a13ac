package service

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"news-cms/internal/model"
	"news-cms/internal/repository"
	"news-cms/pkg/apperr"
	"news-cms/pkg/logger"
)

// Pusher 向在线用户推送消息，websocket.Hub 实现了该接口
type Pusher interface {
	SendToUser(userID uint, msg []byte) bool
}

type SharingService struct {
	clock
	repos  *repository.Repositories
	pusher Pusher
}

// NewSharingService 创建SharingService实例，pusher 可为 nil
func NewSharingService(repos *repository.Repositories, pusher Pusher) *SharingService {
	return &SharingService{clock: defaultClock(), repos: repos, pusher: pusher}
}

// ShareNotification 推送给接收者的通知帧
type ShareNotification struct {
	Type      string `json:"type"`
	ShareID   uint   `json:"shareId"`
	NewsID    uint   `json:"newsId"`
	Title     string `json:"title"`
	SenderID  uint   `json:"senderId"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Share 把文章分享到某个邮箱；接收者在线时推送通知
func (s *SharingService) Share(ctx context.Context, actor model.Actor, newsID uint, recipientEmail, message string) (*model.NewsSharing, error) {
	email := normalizeEmail(recipientEmail)
	if err := validateEmail("recipientEmail", email); err != nil {
		return nil, err
	}
	message = plainText(message)
	if utf8.RuneCountInString(message) > 1000 {
		return nil, apperr.Validation("message is too long").WithField("message", "max 1000 characters")
	}

	news, err := s.repos.News.GetByID(ctx, newsID)
	if err != nil {
		return nil, err
	}
	readable := news.IsApproved || news.IsArchived || actor.IsAdmin() || news.AuthorID == actor.UserID
	if news.IsDeleted || !readable {
		return nil, apperr.NotFound("news")
	}

	share := &model.NewsSharing{
		NewsID:         newsID,
		SenderID:       actor.UserID,
		RecipientEmail: email,
		Message:        message,
		SharedAt:       s.now(),
	}
	if err := s.repos.Sharings.Create(ctx, share); err != nil {
		return nil, err
	}
	s.notify(ctx, share, news)
	return share, nil
}

// Inbox 当前用户收到的分享
func (s *SharingService) Inbox(ctx context.Context, actor model.Actor, page repository.Page) ([]model.NewsSharing, int64, error) {
	return s.repos.Sharings.ListByRecipient(ctx, normalizeEmail(actor.Email), page)
}

// MarkShareRead 设置已读状态，仅接收者
func (s *SharingService) MarkShareRead(ctx context.Context, actor model.Actor, shareID uint, read bool) error {
	share, err := s.repos.Sharings.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if !strings.EqualFold(share.RecipientEmail, actor.Email) {
		return apperr.Forbidden("only the recipient may update this share")
	}
	return s.repos.Sharings.SetRead(ctx, shareID, read)
}

// notify 尽力推送，失败只记日志
func (s *SharingService) notify(ctx context.Context, share *model.NewsSharing, news *model.News) {
	if s.pusher == nil {
		return
	}
	recipient, err := s.repos.Users.GetByEmail(ctx, share.RecipientEmail)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			logger.Warn("查询分享接收者失败", zap.Uint("share_id", share.ID), zap.Error(err))
		}
		return
	}
	frame, err := json.Marshal(ShareNotification{
		Type:      "news_shared",
		ShareID:   share.ID,
		NewsID:    news.ID,
		Title:     news.Title,
		SenderID:  share.SenderID,
		Message:   share.Message,
		Timestamp: share.SharedAt.Unix(),
	})
	if err != nil {
		logger.Warn("序列化分享通知失败", zap.Error(err))
		return
	}
	if !s.pusher.SendToUser(recipient.ID, frame) {
		logger.Debug("分享接收者不在线", zap.Uint("user_id", recipient.ID))
	}
}
