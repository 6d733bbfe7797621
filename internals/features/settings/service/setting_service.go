package service

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"library_backend/internals/features/settings/dto"
	"library_backend/internals/features/settings/model"
	"library_backend/internals/helpers/apperror"
)

type SettingService struct {
	DB *gorm.DB
}

func NewSettingService(db *gorm.DB) *SettingService {
	return &SettingService{DB: db}
}

func (s *SettingService) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.DB.WithContext(ctx)
}

// FindByMemberType looks the policy row up by equality. A missing row is a
// misconfiguration and is reported as NotFound; no default terms are assumed.
func (s *SettingService) FindByMemberType(ctx context.Context, tx *gorm.DB, memberType string) (*model.SystemSetting, error) {
	var row model.SystemSetting
	err := s.conn(ctx, tx).
		Where("setting_member_type = ?", memberType).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("no loan policy configured for member type '%s'", memberType)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *SettingService) List(ctx context.Context) ([]model.SystemSetting, error) {
	var rows []model.SystemSetting
	if err := s.DB.WithContext(ctx).
		Order("setting_member_type ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert replaces the policy for memberType, creating the row when missing.
func (s *SettingService) Upsert(ctx context.Context, memberType string, req dto.UpsertSettingRequest) (*model.SystemSetting, error) {
	if err := req.Validate(memberType); err != nil {
		return nil, err
	}

	var out model.SystemSetting
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("setting_member_type = ?", memberType).Take(&out).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = model.SystemSetting{SettingMemberType: memberType}
			req.ApplyTo(&out)
			return tx.Create(&out).Error
		case err != nil:
			return err
		}
		req.ApplyTo(&out)
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SETTINGS] policy for %s updated", memberType)
	return &out, nil
}
