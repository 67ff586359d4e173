package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/user-account-service/internal/models"
)

const userColumns = `id, username, password, email, first_name, last_name,
			      phone_number, address, city, country, zip_code`

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Если user.ID больше нуля, идентификатор задается клиентом,
// иначе используется значение из последовательности.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (int, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int
	if user.ID > 0 {
		query := `INSERT INTO users (id, username, password, email, first_name, last_name,
			      phone_number, address, city, country, zip_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id;`
		if err := s.DB.QueryRowContext(ctx, query,
			user.ID, user.Username, user.PasswordHash, user.Email, user.FirstName,
			user.LastName, user.PhoneNumber, user.Address, user.City, user.Country,
			user.ZipCode).Scan(&newID); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
		return newID, nil
	}

	query := `INSERT INTO users (username, password, email, first_name, last_name,
			      phone_number, address, city, country, zip_code)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Username, user.PasswordHash, user.Email, user.FirstName, user.LastName,
		user.PhoneNumber, user.Address, user.City, user.Country,
		user.ZipCode).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE username = $1`
	row := s.DB.QueryRowContext(ctx, query, username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его идентификатору.
func (s *Storage) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	const op = "storage.GetUserByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, отсортированных по id по возрастанию.
// При отсутствии записей возвращается пустой срез, не nil.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  ORDER BY id ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUser применяет патч к записи пользователя и возвращает число
// обновленных строк. Ноль строк не считается ошибкой.
func (s *Storage) UpdateUser(ctx context.Context, id int, patch models.UserPatch) (int, error) {
	const op = "storage.UpdateUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query, args := BuildUpdateQuery(id, patch)
	if query == "" {
		return 0, nil
	}

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// DeleteUser удаляет пользователя по id и возвращает число удаленных строк.
// Удаление несуществующего id не является ошибкой.
func (s *Storage) DeleteUser(ctx context.Context, id int) (int, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(count), nil
}

// BuildUpdateQuery строит параметризованный UPDATE только из явно переданных
// полей патча, в порядке их объявления. Возвращает пустой запрос,
// если патч не содержит ни одного поля.
func BuildUpdateQuery(id int, patch models.UserPatch) (string, []any) {
	var setClauses []string
	var args []any

	for _, f := range patch.Fields() {
		if !f.Value.Set {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", f.Column, len(args)+1))
		if f.Value.Valid {
			args = append(args, f.Value.Value)
		} else {
			args = append(args, nil)
		}
	}

	if len(setClauses) == 0 {
		return "", nil
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d",
		strings.Join(setClauses, ", "), len(args)+1)
	args = append(args, id)
	return query, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var phoneNumber, address, city, country, zipCode sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email,
		&u.FirstName, &u.LastName, &phoneNumber, &address, &city,
		&country, &zipCode); err != nil {
		return nil, err
	}

	if phoneNumber.Valid {
		u.PhoneNumber = &phoneNumber.String
	}
	if address.Valid {
		u.Address = &address.String
	}
	if city.Valid {
		u.City = &city.String
	}
	if country.Valid {
		u.Country = &country.String
	}
	if zipCode.Valid {
		u.ZipCode = &zipCode.String
	}
	return u, nil
}
