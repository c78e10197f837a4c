package persistence

import (
	"context"
	"database/sql"
	"time"

	"social-hub/domain/model"
	"social-hub/domain/repository"
	"social-hub/infrastructure/logger"
)

// UserRepositoryMySQL is the MySQL implementation of IUser backing local
// development environments (see NewNativeDb).
type UserRepositoryMySQL struct{ db *sql.DB }

func NewUserRepositoryMySQL(db *sql.DB) repository.IUser { return &UserRepositoryMySQL{db} }

func (r *UserRepositoryMySQL) GetById(ctx context.Context, id int) (model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `SELECT id, name, user_name, password, created_at, updated_at FROM users WHERE id = ?`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		logger.GetLogger().WithField("error", err).Error("mysql: query user by id failed")
		return u, err
	}
	return u, nil
}

func (r *UserRepositoryMySQL) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	var u model.User
	row := r.db.QueryRowContext(ctx, `SELECT id, name, user_name, password, created_at, updated_at FROM users WHERE user_name = ?`, userName)
	if err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.CreatedAt, &u.UpdatedAt); err != nil {
		logger.GetLogger().WithField("error", err).Error("mysql: query user by username failed")
		return u, err
	}
	return u, nil
}

func (r *UserRepositoryMySQL) CreateUser(ctx context.Context, user model.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users (name, user_name, password, created_at, updated_at) VALUES (?, ?, ?, ?, NOW())`, user.Name, user.UserName, user.Password, createdAt)
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("mysql: create user failed")
	}
	return err
}
