package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"task-manager/internal/apperr"
	"task-manager/internal/model"
)

// UserRepository handles users and the active-session flag.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts user. A username that already exists is rejected as
// invalid input, whichever signup reached the unique index first.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Invalid("username", "Username taken.")
	default:
		return apperr.Storage("create user", err)
	}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("user", username)
	default:
		return nil, apperr.Storage("find user", err)
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.NotFound("user", id)
	default:
		return nil, apperr.Storage("find user", err)
	}
}

// SetActiveSession clears the flag on every user and then sets it, with
// sessionID and its expiry, on userID. Both updates commit together, so
// readers never see two active users.
func (r *UserRepository) SetActiveSession(ctx context.Context, userID uint, sessionID string, expiresAt time.Time) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearActive(tx); err != nil {
			return err
		}
		result := tx.Model(&model.User{}).Where("id = ?", userID).
			Updates(map[string]interface{}{
				"active_session":     true,
				"session_id":         sessionID,
				"session_expires_at": expiresAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("user", userID)
		}
		return nil
	})
	return apperr.Storage("set active session", err)
}

// ClearActiveSession logs everybody out. It is a no-op when nobody is active.
func (r *UserRepository) ClearActiveSession(ctx context.Context) error {
	return apperr.Storage("clear active session", clearActive(r.db.WithContext(ctx)))
}

// EndSession clears the active flag of userID only while sessionID is still
// its current session. A later login is left alone.
func (r *UserRepository) EndSession(ctx context.Context, userID uint, sessionID string) error {
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND session_id = ? AND active_session = ?", userID, sessionID, true).
		Updates(inactiveColumns()).Error
	return apperr.Storage("end session", err)
}

func (r *UserRepository) FindActive(ctx context.Context) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Where("active_session = ?", true).First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperr.ErrNoActiveUser
	default:
		return nil, apperr.Storage("find active user", err)
	}
}

func (r *UserRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("active_session = ?", true).Count(&count).Error; err != nil {
		return 0, apperr.Storage("count active users", err)
	}
	return count, nil
}

func clearActive(db *gorm.DB) error {
	return db.Model(&model.User{}).Where("active_session = ?", true).
		Updates(inactiveColumns()).Error
}

func inactiveColumns() map[string]interface{} {
	return map[string]interface{}{"active_session": false, "session_id": "", "session_expires_at": nil}
}
