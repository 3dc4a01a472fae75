package entity

import "time"

// OneTimeCode - код подтверждения email, живущий в хранилище ключей с TTL.
// В БД не сохраняется.
type OneTimeCode struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired проверяет, истек ли код на момент now
func (c *OneTimeCode) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
