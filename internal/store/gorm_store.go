package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/faithbridge/member-insights/internal/models"
)

// GormStore implements Store against the shared Postgres database.
type GormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new Postgres-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := s.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, s.unavailable("list members", err)
	}
	return members, nil
}

func (s *GormStore) GetMember(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, id)
	}
	if err != nil {
		return nil, s.unavailable("get member", err)
	}
	return &member, nil
}

func (s *GormStore) ListMemberActivity(ctx context.Context, memberID uuid.UUID, limit int) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord
	err := s.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, s.unavailable("list member activity", err)
	}
	return records, nil
}

func (s *GormStore) ListMemberDonations(ctx context.Context, memberID uuid.UUID, limit int) ([]models.DonationRecord, error) {
	var records []models.DonationRecord
	err := s.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, s.unavailable("list member donations", err)
	}
	return records, nil
}

func (s *GormStore) ListDonationsBetween(ctx context.Context, from, to time.Time) ([]models.DonationRecord, error) {
	var records []models.DonationRecord
	err := s.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, s.unavailable("list donations", err)
	}
	return records, nil
}

func (s *GormStore) ListActiveRecurringDonations(ctx context.Context) ([]models.DonationRecord, error) {
	var records []models.DonationRecord
	err := s.db.WithContext(ctx).
		Where("is_recurring = ? AND status = ?", true, models.DonationStatusActive).
		Find(&records).Error
	if err != nil {
		return nil, s.unavailable("list recurring donations", err)
	}
	return records, nil
}

func (s *GormStore) ListSearchLogsBetween(ctx context.Context, from, to time.Time) ([]models.SearchLogRecord, error) {
	var records []models.SearchLogRecord
	err := s.db.WithContext(ctx).
		Where("occurred_at >= ? AND occurred_at < ?", from, to).
		Order("occurred_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, s.unavailable("list search logs", err)
	}
	return records, nil
}

func (s *GormStore) ListTopContent(ctx context.Context, limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	err := s.db.WithContext(ctx).
		Order("view_count DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, s.unavailable("list top content", err)
	}
	return items, nil
}

func (s *GormStore) unavailable(op string, err error) error {
	s.logger.Error("Store read failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %v", ErrDataUnavailable, op, err)
}
