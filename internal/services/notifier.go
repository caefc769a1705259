package services

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/instaclone/backend/internal/apperrors"
	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/anonto42/instaclone/backend/internal/repositories"
	"go.uber.org/zap"
)

// notify records a notification for recipientID. It never fails the
// caller: a user acting on their own content is skipped and storage errors
// are only logged.
func notify(ctx context.Context, repo repositories.NotificationRepository, n *models.Notification) {
	if n.ActorID == n.RecipientID {
		return
	}
	if err := repo.CreateNotification(ctx, n); err != nil {
		logger.Log.Warn("Failed to create notification",
			zap.Error(err),
			zap.String("type", n.Type),
			logger.WithUserID(n.RecipientID),
		)
	}
}

func notificationFor(kind string, actor *models.User, recipientID uint, targetID, targetType string) *models.Notification {
	var msg string
	switch kind {
	case models.NotificationFollow:
		msg = fmt.Sprintf("%s started following you", actor.Username)
	case models.NotificationFollowRequest:
		msg = fmt.Sprintf("%s requested to follow you", actor.Username)
	case models.NotificationFollowApproved:
		msg = fmt.Sprintf("%s approved your follow request", actor.Username)
	case models.NotificationLike:
		msg = fmt.Sprintf("%s liked your %s", actor.Username, targetType)
	case models.NotificationComment:
		msg = fmt.Sprintf("%s commented on your post", actor.Username)
	}
	return &models.Notification{
		Type:        kind,
		ActorID:     actor.ID,
		RecipientID: recipientID,
		TargetID:    targetID,
		TargetType:  targetType,
		Message:     msg,
	}
}

// NotificationService reads and acknowledges a user's notifications.
type NotificationService struct {
	repo  repositories.NotificationRepository
	users repositories.UserRepository
	now   func() time.Time
}

func NewNotificationService(repo repositories.NotificationRepository, users repositories.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, users: users, now: time.Now}
}

// NotificationView is a notification with its actor attached.
type NotificationView struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

type NotificationPage struct {
	Notifications []NotificationView `json:"notifications"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	Limit         int                `json:"limit"`
}

type NotificationGroups struct {
	Today     []NotificationView `json:"today"`
	Yesterday []NotificationView `json:"yesterday"`
	ThisWeek  []NotificationView `json:"this_week"`
	Older     []NotificationView `json:"older"`
}

func (s *NotificationService) List(ctx context.Context, userID uint, page, limit int) (*NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}
	items, total, err := s.repo.GetByRecipientID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, items)
	if err != nil {
		return nil, err
	}
	return &NotificationPage{Notifications: views[0], Total: total, Page: page, Limit: limit}, nil
}

// Grouped buckets notifications into today, yesterday, the rest of the
// week and older.
func (s *NotificationService) Grouped(ctx context.Context, userID uint) (*NotificationGroups, error) {
	groups, err := s.repo.GetGrouped(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}
	views, err := s.enrich(ctx, groups.Today, groups.Yesterday, groups.ThisWeek, groups.Older)
	if err != nil {
		return nil, err
	}
	return &NotificationGroups{Today: views[0], Yesterday: views[1], ThisWeek: views[2], Older: views[3]}, nil
}

// enrich attaches actors to every list with a single user lookup.
func (s *NotificationService) enrich(ctx context.Context, lists ...[]models.Notification) ([][]NotificationView, error) {
	var ids []uint
	seen := make(map[uint]bool)
	for _, list := range lists {
		for _, n := range list {
			if !seen[n.ActorID] {
				seen[n.ActorID] = true
				ids = append(ids, n.ActorID)
			}
		}
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	actors := compactUsers(users)

	out := make([][]NotificationView, len(lists))
	for i, list := range lists {
		out[i] = make([]NotificationView, 0, len(list))
		for _, n := range list {
			out[i] = append(out[i], NotificationView{Notification: n, Actor: actors[n.ActorID]})
		}
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint) error {
	ok, err := s.repo.MarkAsRead(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("notification")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
