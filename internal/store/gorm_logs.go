package store

import (
	"context"
	"time"

	"github.com/bloodbank/bloodbank-api/internal/models"
	"github.com/google/uuid"
)

func (s *GormStore) WriteAudit(ctx context.Context, entry *models.AuditLog) error {
	return translate(s.db.WithContext(ctx).Create(entry).Error, "write audit log")
}

func (s *GormStore) ListAudit(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count audit logs")
	}

	var logs []models.AuditLog
	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&logs).Error
	if err != nil {
		return nil, 0, translate(err, "list audit logs")
	}
	return logs, total, nil
}

func (s *GormStore) WriteSystemLogs(ctx context.Context, logs []models.SystemLog) error {
	if len(logs) == 0 {
		return nil
	}
	for i := range logs {
		if logs[i].ID == uuid.Nil {
			logs[i].ID = uuid.New()
		}
	}
	return translate(s.db.WithContext(ctx).CreateInBatches(logs, 50).Error, "write system logs")
}

func (s *GormStore) PurgeSystemLogs(ctx context.Context, before time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("timestamp < ?", before).Delete(&models.SystemLog{})
	if result.Error != nil {
		return 0, translate(result.Error, "purge system logs")
	}
	return result.RowsAffected, nil
}
