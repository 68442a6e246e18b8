package gateway

import (
	"context"

	"inkwell/internal/models"
)

func (g *GormGateway) CreateNotification(ctx context.Context, n *models.Notification) error {
	return translate(g.db.WithContext(ctx).Create(n).Error)
}

func (g *GormGateway) HasNotification(ctx context.Context, userID, actorID, articleID string, typ models.NotificationType) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND actor_id = ? AND article_id = ? AND type = ?", userID, actorID, articleID, typ).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (g *GormGateway) ListNotifications(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	var list []models.Notification
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, translate(err)
	}
	return list, nil
}

func (g *GormGateway) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translate(err)
}

func (g *GormGateway) MarkNotificationRead(ctx context.Context, id, userID string) error {
	res := g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *GormGateway) MarkAllNotificationsRead(ctx context.Context, userID string) (int64, error) {
	res := g.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, translate(res.Error)
}

func (g *GormGateway) DeleteNotification(ctx context.Context, id, userID string) error {
	res := g.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
