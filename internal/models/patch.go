package models

import (
	"encoding/json"
	"fmt"
)

// OptionalString различает три состояния поля JSON-запроса:
// поле отсутствует (Set=false), поле равно null (Set=true, Valid=false)
// и поле задано значением (Set=true, Valid=true).
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON вызывается только для присутствующих в JSON полей,
// поэтому сам факт вызова означает Set=true.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Valid = true
	o.Value = s
	return nil
}

// Ptr возвращает указатель на значение либо nil, если поле было null.
func (o OptionalString) Ptr() *string {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// NullFieldError сообщает, что обязательное поле передано со значением null.
type NullFieldError struct {
	Field string
}

func (e *NullFieldError) Error() string {
	return fmt.Sprintf("field %s should not be null", e.Field)
}

// UserPatch описывает частичное обновление записи пользователя.
// Каждое поле несёт признак присутствия в исходном запросе,
// что позволяет обновлять только явно переданные колонки.
type UserPatch struct {
	Username    OptionalString `json:"username"`
	Password    OptionalString `json:"password"`
	Email       OptionalString `json:"email"`
	FirstName   OptionalString `json:"first_name"`
	LastName    OptionalString `json:"last_name"`
	PhoneNumber OptionalString `json:"phone_number"`
	Address     OptionalString `json:"address"`
	City        OptionalString `json:"city"`
	Country     OptionalString `json:"country"`
	ZipCode     OptionalString `json:"zip_code"`
}

// PatchField связывает имя колонки с переданным значением.
type PatchField struct {
	Column   string
	Value    OptionalString
	Required bool
}

// Fields возвращает поля патча в порядке объявления колонок.
// Поля username..last_name обязательны при присутствии, остальные допускают null.
func (p *UserPatch) Fields() []PatchField {
	return []PatchField{
		{Column: "username", Value: p.Username, Required: true},
		{Column: "password", Value: p.Password, Required: true},
		{Column: "email", Value: p.Email, Required: true},
		{Column: "first_name", Value: p.FirstName, Required: true},
		{Column: "last_name", Value: p.LastName, Required: true},
		{Column: "phone_number", Value: p.PhoneNumber},
		{Column: "address", Value: p.Address},
		{Column: "city", Value: p.City},
		{Column: "country", Value: p.Country},
		{Column: "zip_code", Value: p.ZipCode},
	}
}

// Validate возвращает ошибку для первого обязательного поля,
// переданного как null, в порядке объявления.
func (p *UserPatch) Validate() error {
	for _, f := range p.Fields() {
		if f.Required && f.Value.Set && !f.Value.Valid {
			return &NullFieldError{Field: f.Column}
		}
	}
	return nil
}

// IsEmpty сообщает, что в запросе не было передано ни одного поля.
func (p *UserPatch) IsEmpty() bool {
	for _, f := range p.Fields() {
		if f.Value.Set {
			return false
		}
	}
	return true
}
