package models

import "time"

// Коллекции, в которых может использоваться загруженный файл.
const (
	WhereUsers        = "users"
	WhereUploads      = "uploads"
	WhereRoles        = "roles"
	WherePermissions  = "permissions"
	WhereEndpoints    = "endpoints"
	WhereDependencies = "dependencies"
)

// Upload — метаданные одного файла в объектном хранилище.
type Upload struct {
	ID        string
	UserID    string
	Location  string // Адрес объекта в хранилище, уникален
	InUse     bool
	WhereUsed string
	CreatedAt time.Time
}

// File — принятый из multipart-формы файл, целиком в памяти.
type File struct {
	Name     string
	MIMEType string
	Data     []byte
}
