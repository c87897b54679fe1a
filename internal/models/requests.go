package models

// Тела и параметры запросов. Теги validate разбирает middlewarectx.Validate,
// label задаёт имя поля в сообщениях об ошибках.

type LoginRequest struct {
	Username string `json:"username" label:"Username" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required,between=4:16"`
}

// SignUpCEORequest — первичная регистрация руководителя по ключу.
type SignUpCEORequest struct {
	Username string `json:"username" label:"Username" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required,between=4:16"`
	RegKey   string `json:"regKey" label:"Registration key" validate:"required"`
}

// UpdateMeRequest — изменение собственного профиля. Пустые поля не меняются.
type UpdateMeRequest struct {
	Fullname string `json:"fullname,omitempty" label:"Fullname"`
	Username string `json:"username,omitempty" label:"Username"`
	Phone    string `json:"phone,omitempty" label:"Phone number" validate:"omitempty,phone"`
}

// UpdatePasswordRequest используется для смены собственного пароля.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" label:"Current password" validate:"required,between=4:16"`
	NewPassword     string `json:"newPassword" label:"New password" validate:"required,between=4:16"`
}

// CreateUserRequest — создание сотрудника руководителем.
type CreateUserRequest struct {
	Username string `json:"username" label:"Username" validate:"required"`
	Password string `json:"password" label:"Password" validate:"required,between=4:16"`
	Fullname string `json:"fullname" label:"Fullname" validate:"required"`
	Phone    string `json:"phone" label:"Phone number" validate:"required,phone"`
	Role     Role   `json:"role" label:"Role" validate:"required,oneof=ceo admin manager employee"`
	Section  string `json:"section,omitempty" label:"Section" validate:"omitempty,oneof=management sales finance warehouse production"`
}

// UpdateUserRequest — изменение сотрудника руководителем. Пустые поля не меняются.
type UpdateUserRequest struct {
	ID       string `json:"-" param:"id" label:"User ID" validate:"required,uuid"`
	Username string `json:"username,omitempty" label:"Username"`
	Password string `json:"password,omitempty" label:"Password" validate:"omitempty,between=4:16"`
	Fullname string `json:"fullname,omitempty" label:"Fullname"`
	Phone    string `json:"phone,omitempty" label:"Phone number" validate:"omitempty,phone"`
	Role     Role   `json:"role,omitempty" label:"Role" validate:"omitempty,oneof=ceo admin manager employee"`
	Section  string `json:"section,omitempty" label:"Section" validate:"omitempty,oneof=management sales finance warehouse production"`
	Status   Status `json:"status,omitempty" label:"Status" validate:"omitempty,oneof=active inactive"`
}

// ListUsersRequest — параметры строки запроса для списка сотрудников.
type ListUsersRequest struct {
	Page   string `json:"-" query:"page" label:"Page" validate:"omitempty,intrange=1:1000000"`
	Limit  string `json:"-" query:"limit" label:"Limit" validate:"omitempty,intrange=1:100"`
	Search string `json:"-" query:"search" label:"Search"`
	Role   Role   `json:"-" query:"role" label:"Role" validate:"omitempty,oneof=ceo admin manager employee"`
}

// UserIDRequest содержит идентификатор пользователя из пути.
type UserIDRequest struct {
	ID string `json:"-" param:"id" label:"User ID" validate:"required,uuid"`
}
