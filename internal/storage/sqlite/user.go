package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/influence-hub/community-bot/internal/model"
)

type UserStorage struct {
	db *sql.DB
}

func NewUserStorage(db *sql.DB) *UserStorage {
	return &UserStorage{db: db}
}

func (s *UserStorage) CreateUser(ctx context.Context, user *model.User) error {
	const query = `INSERT INTO users (tg_user_id, username, role, coins, is_admin)
	VALUES (?, ?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, query,
		user.TgUserID,
		user.Username,
		string(user.Role),
		user.Coins,
		user.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}

	user.ID = int(id)
	return nil
}

func (s *UserStorage) FetchUserByTgID(ctx context.Context, tgUserID int64) (*model.User, error) {
	const query = `SELECT id, tg_user_id, username, role, coins, is_admin, created_at
	FROM users WHERE tg_user_id = ?`
	return s.fetchOne(ctx, query, tgUserID)
}

func (s *UserStorage) FetchUserByID(ctx context.Context, userID int) (*model.User, error) {
	const query = `SELECT id, tg_user_id, username, role, coins, is_admin, created_at
	FROM users WHERE id = ?`
	return s.fetchOne(ctx, query, userID)
}

func (s *UserStorage) fetchOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var user model.User
	var role string
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.TgUserID,
		&user.Username,
		&role,
		&user.Coins,
		&user.IsAdmin,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("could not fetch user: %w", err)
	}
	user.Role = model.UserRole(role)
	return &user, nil
}

func (s *UserStorage) UpdateUsername(ctx context.Context, userID int, username string) error {
	const query = `UPDATE users SET username = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, username, userID)
	return err
}

func (s *UserStorage) SetRole(ctx context.Context, tgUserID int64, role model.UserRole) error {
	const query = `UPDATE users SET role = ? WHERE tg_user_id = ?`
	result, err := s.db.ExecContext(ctx, query, string(role), tgUserID)
	if err != nil {
		return fmt.Errorf("could not set role: %w", err)
	}
	return checkAffected(result)
}

func (s *UserStorage) SetAdmin(ctx context.Context, tgUserID int64, isAdmin bool) error {
	const query = `UPDATE users SET is_admin = ? WHERE tg_user_id = ?`
	result, err := s.db.ExecContext(ctx, query, isAdmin, tgUserID)
	if err != nil {
		return fmt.Errorf("could not set admin flag: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *UserStorage) FetchUsersByRole(ctx context.Context, role model.UserRole) ([]model.User, error) {
	const query = `SELECT id, tg_user_id, username, role, coins, is_admin, created_at
	FROM users WHERE role = ? ORDER BY id`
	return s.fetchMany(ctx, query, string(role))
}

func (s *UserStorage) FetchTop(ctx context.Context, limit int) ([]model.User, error) {
	// Ties are broken by id so that the leaderboard ordering is stable.
	const query = `SELECT id, tg_user_id, username, role, coins, is_admin, created_at
	FROM users ORDER BY coins DESC, id ASC LIMIT ?`
	return s.fetchMany(ctx, query, limit)
}

func (s *UserStorage) fetchMany(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not fetch users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		var role string
		err := rows.Scan(
			&user.ID,
			&user.TgUserID,
			&user.Username,
			&role,
			&user.Coins,
			&user.IsAdmin,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("could not scan user: %w", err)
		}
		user.Role = model.UserRole(role)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate users: %w", err)
	}
	return users, nil
}

func (s *UserStorage) FetchAllTgIDs(ctx context.Context) ([]int64, error) {
	const query = `SELECT tg_user_id FROM users ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("could not scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate user ids: %w", err)
	}
	return ids, nil
}

func (s *UserStorage) CountWithMoreCoins(ctx context.Context, coins int) (int, error) {
	const query = `SELECT COUNT(*) FROM users WHERE coins > ?`
	var count int
	if err := s.db.QueryRowContext(ctx, query, coins).Scan(&count); err != nil {
		return 0, fmt.Errorf("could not count users: %w", err)
	}
	return count, nil
}
