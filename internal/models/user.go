// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и необязательные
// поля профиля. Структуры используются в бизнес‑логике и при работе
// с хранилищем.
package models

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash никогда не сериализуется в JSON и не покидает сервер.
type User struct {
	ID           int     `json:"id"`
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Email        string  `json:"email"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	PhoneNumber  *string `json:"phone_number,omitempty"`
	Address      *string `json:"address,omitempty"`
	City         *string `json:"city,omitempty"`
	Country      *string `json:"country,omitempty"`
	ZipCode      *string `json:"zip_code,omitempty"`
}
