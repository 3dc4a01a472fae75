package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (нет токена, неверный или истекший токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов уникальности (например, email уже занят).
	ErrConflict = errors.New("resource state conflict")

	// ErrConfiguration используется, когда не задан обязательный операционный секрет
	// (ключ почтового сервиса, JWT секрет и т.п.).
	ErrConfiguration = errors.New("configuration error")

	// ErrDependency используется при отказе внешней зависимости (БД, почтовый транспорт).
	ErrDependency = errors.New("dependency failure")
)
