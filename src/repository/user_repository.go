package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/louisinayinde/dashboard-finance/src/database"
	"github.com/louisinayinde/dashboard-finance/src/model"
)

// UserRepository handles user accounts. Passwords are bcrypt-hashed at
// the repository boundary; plaintext never reaches a model field.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository instance using the main
// read/write database.
func NewUserRepository() *UserRepository {
	logger.WithField("component", "UserRepository").
		Info("Creating new UserRepository with MainDB")

	return &UserRepository{
		db: database.MainDB,
	}
}

// WithDB allows overriding the underlying *gorm.DB instance.
func (r *UserRepository) WithDB(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) FindByEmail(
	ctx context.Context,
	email string,
) (*model.User, error) {

	var user model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":  "UserRepository",
			"op":    "FindByEmail",
			"email": email,
		}).WithError(err).Error("Failed to fetch user by email")

		return nil, err
	}

	return &user, nil
}

// FindByUsername fetches a user by username. Returns (nil, nil) if not
// found.
func (r *UserRepository) FindByUsername(
	ctx context.Context,
	username string,
) (*model.User, error) {

	var user model.User

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "UserRepository",
			"op":       "FindByUsername",
			"username": username,
		}).WithError(err).Error("Failed to fetch user by username")

		return nil, err
	}

	return &user, nil
}

// ListActive returns all active users.
func (r *UserRepository) ListActive(
	ctx context.Context,
	limit int,
	offset int,
) ([]model.User, error) {

	if limit <= 0 {
		limit = 100
	}

	var users []model.User

	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Limit(limit).
		Offset(offset).
		Find(&users).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "ListActive",
		}).WithError(err).Error("Failed to list active users")

		return nil, err
	}

	return users, nil
}

// Create inserts a new user, hashing the given plaintext password.
func (r *UserRepository) Create(
	ctx context.Context,
	user *model.User,
	password string,
) error {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":  "UserRepository",
			"op":    "Create",
			"email": user.Email,
		}).WithError(err).Error("Failed to create user")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "UserRepository",
		"op":      "Create",
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User created successfully")

	return nil
}

// UpdatePassword re-hashes and stores a new password for the user.
// Returns false when the user does not exist.
func (r *UserRepository) UpdatePassword(
	ctx context.Context,
	userID uint,
	password string,
) (bool, error) {

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("password_hash", string(hash))

	if result.Error != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "UserRepository",
			"op":      "UpdatePassword",
			"user_id": userID,
		}).WithError(result.Error).Error("Failed to update password")

		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// VerifyPassword checks a plaintext password against a stored hash.
func (r *UserRepository) VerifyPassword(hashed string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// Authenticate verifies credentials and stamps last_login on success.
// Absent user or wrong password both return (nil, nil): callers cannot
// distinguish the two cases.
func (r *UserRepository) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (*model.User, error) {

	user, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}

	if !r.VerifyPassword(user.PasswordHash, password) {
		logger.WithFields(map[string]interface{}{
			"repo":    "UserRepository",
			"op":      "Authenticate",
			"user_id": user.ID,
		}).Info("Password verification failed")

		return nil, nil
	}

	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Model(user).
		Update("last_login", now).Error; err != nil {

		logger.WithFields(map[string]interface{}{
			"repo":    "UserRepository",
			"op":      "Authenticate",
			"user_id": user.ID,
		}).WithError(err).Warn("Failed to stamp last login")
	}
	user.LastLogin = &now

	return user, nil
}
