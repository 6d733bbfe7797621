package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library_backend/internals/features/auth/model"
	"library_backend/internals/helpers/apperror"
)

func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*model.UserModel, error) {
	var u model.UserModel
	err := db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*model.UserModel, error) {
	var u model.UserModel
	err := db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func UpdateUserPassword(ctx context.Context, db *gorm.DB, id uuid.UUID, hash string) error {
	res := db.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ?", id).
		Update("password", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}
