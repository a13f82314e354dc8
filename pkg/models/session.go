package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Session is a server-side session row. The token itself is the primary key,
// so logout is a row delete and takes effect immediately.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	Token       string     `bun:",pk,nullzero" json:"token"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	AdminUserID string     `bun:",nullzero" json:"admin_user_id"`
	AdminUser   *AdminUser `bun:"rel:belongs-to,join:admin_user_id=id" json:"admin_user,omitempty"`
}

func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
