package domain

import (
	"errors"
	"time"
)

// User es el registro de identidad persistido por el credential store.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Fullname     string    `json:"fullname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// PublicUser es la proyección expuesta hacia afuera; nunca lleva el hash.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

// UserClaim es el payload embebido en cada token emitido.
type UserClaim struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
}

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Fullname: u.Fullname}
}

func (u User) Claim() UserClaim {
	return UserClaim{ID: u.ID, Username: u.Username, Fullname: u.Fullname}
}
