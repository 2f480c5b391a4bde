package repository

import (
	"context"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error

	CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error
	GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return GetDB(ctx, r.db).Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepository) CreateRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *userRepository) GetRefreshToken(ctx context.Context, token string) (*model.RefreshToken, error) {
	var stored model.RefreshToken
	if err := GetDB(ctx, r.db).First(&stored, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *userRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	return GetDB(ctx, r.db).Delete(&model.RefreshToken{}, "token = ?", token).Error
}

// EmployeeProfileRepository persists the compensation attributes layered on
// top of user accounts.
type EmployeeProfileRepository interface {
	Upsert(ctx context.Context, profile *model.EmployeeProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.EmployeeProfile, error)
	ListAll(ctx context.Context) ([]model.EmployeeProfile, error)
}

type employeeProfileRepository struct {
	db *gorm.DB
}

func NewEmployeeProfileRepository(db *gorm.DB) EmployeeProfileRepository {
	return &employeeProfileRepository{db: db}
}

func (r *employeeProfileRepository) Upsert(ctx context.Context, profile *model.EmployeeProfile) error {
	db := GetDB(ctx, r.db)

	var existing model.EmployeeProfile
	err := db.First(&existing, "user_id = ?", profile.UserID).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(profile).Error
	}
	if err != nil {
		return err
	}

	profile.ID = existing.ID
	profile.CreatedAt = existing.CreatedAt
	return db.Save(profile).Error
}

func (r *employeeProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.EmployeeProfile, error) {
	var profile model.EmployeeProfile
	if err := GetDB(ctx, r.db).Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *employeeProfileRepository) ListAll(ctx context.Context) ([]model.EmployeeProfile, error) {
	var profiles []model.EmployeeProfile
	if err := GetDB(ctx, r.db).Preload("User").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
