package model

import (
	"context"
	"errors"
	"time"
)

type User struct {
	ID        int
	TgUserID  int64
	Username  string
	Role      UserRole
	Coins     int
	IsAdmin   bool
	CreatedAt time.Time
}

func NewUser(tgUserID int64, username string) *User {
	return &User{
		TgUserID: tgUserID,
		Username: username,
	}
}

type UserRole string

const (
	UserRoleNone   UserRole = ""
	UserRoleActive UserRole = "active"
	UserRoleGuru   UserRole = "guru"
	UserRoleHelper UserRole = "helper"
)

func (r UserRole) StringLocalized() string {
	switch r {
	case UserRoleActive:
		return "активный спикер"
	case UserRoleGuru:
		return "гуру тех.заданий"
	case UserRoleHelper:
		return "помогатор"
	default:
		return "—"
	}
}

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FetchUserByTgID(ctx context.Context, tgUserID int64) (*User, error)
	FetchUserByID(ctx context.Context, userID int) (*User, error)
	CreateUser(ctx context.Context, user *User) error
	UpdateUsername(ctx context.Context, userID int, username string) error
	SetRole(ctx context.Context, tgUserID int64, role UserRole) error
	SetAdmin(ctx context.Context, tgUserID int64, isAdmin bool) error
	FetchUsersByRole(ctx context.Context, role UserRole) ([]User, error)
	FetchAllTgIDs(ctx context.Context) ([]int64, error)
	FetchTop(ctx context.Context, limit int) ([]User, error)
	CountWithMoreCoins(ctx context.Context, coins int) (int, error)
}
