// Package storage объявляет ошибки слоя хранения, общие для всех репозиториев.
package storage

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrUsernameExists — нарушено ограничение уникальности username.
	ErrUsernameExists = errors.New("username already exists")
	// ErrPhoneExists — нарушено ограничение уникальности phone.
	ErrPhoneExists = errors.New("phone already exists")
	// ErrCEOExists — в системе уже есть пользователь с ролью ceo.
	ErrCEOExists = errors.New("ceo already exists")
	// ErrLocationExists — загрузка с таким location уже записана.
	ErrLocationExists = errors.New("upload location already exists")
)
