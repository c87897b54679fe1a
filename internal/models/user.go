// Package models содержит доменные сущности: пользователей, загрузки
// и вспомогательные структуры для фильтрации и пагинации.
package models

import "time"

// Role — роль пользователя в организации.
type Role string

const (
	RoleCEO      Role = "ceo"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Status — состояние учётной записи.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Подразделения организации.
const (
	SectionManagement = "management"
	SectionSales      = "sales"
	SectionFinance    = "finance"
	SectionWarehouse  = "warehouse"
	SectionProduction = "production"
)

// User представляет сотрудника организации.
type User struct {
	ID           string    `json:"id"`
	Fullname     string    `json:"fullname"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Section      string    `json:"section,omitempty"`
	Status       Status    `json:"status"`
	PasswordHash string    `json:"-"` // Никогда не отдаётся клиенту
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch — частичное обновление пользователя. nil означает «не менять».
type UserPatch struct {
	Fullname     *string
	Username     *string
	Phone        *string
	Role         *Role
	Section      *string
	Status       *Status
	PasswordHash *string
}

// Empty сообщает, что в патче нет ни одного поля.
func (p UserPatch) Empty() bool {
	return p.Fullname == nil && p.Username == nil && p.Phone == nil && p.Role == nil &&
		p.Section == nil && p.Status == nil && p.PasswordHash == nil
}

// StringPtr возвращает указатель на s или nil для пустой строки.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
