package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gcsepal-backend/internal/model"
)

// ErrNotFound is returned when a lookup matches no row. Controllers map it
// to a 404 envelope.
var ErrNotFound = errors.New("record not found")

type UserRepository interface {
	CreateUser(user *model.User) error
	GetUserByID(id uuid.UUID) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	UpdateUser(user *model.User) error
	BumpTokenVersion(id uuid.UUID) error
	TokenVersion(id uuid.UUID) (int, error)
	// SyncExternalUser upserts a user keyed on the auth-provider id inside a
	// transaction, so the same identity synced concurrently cannot produce
	// duplicate rows.
	SyncExternalUser(externalID, email, name string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) GetUserByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) BumpTokenVersion(id uuid.UUID) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error
}

func (r *userRepository) TokenVersion(id uuid.UUID) (int, error) {
	var version int
	err := r.db.Model(&model.User{}).Where("id = ?", id).
		Pluck("token_version", &version).Error
	return version, err
}

func (r *userRepository) SyncExternalUser(externalID, email, name string) (*model.User, error) {
	var user model.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("external_id = ?", externalID).First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = model.User{
				ExternalID: externalID,
				Email:      email,
				Name:       name,
				Role:       model.RoleStudent,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		user.Email = email
		user.Name = name
		return tx.Save(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
