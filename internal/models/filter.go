package models

// UserFilter — параметры выборки списка пользователей.
type UserFilter struct {
	Search string // Подстрока в username, fullname или phone
	Role   Role   // Пустая строка означает любую роль
	Page   int
	Limit  int
}

// Offset возвращает смещение для выбранной страницы.
func (f UserFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}
