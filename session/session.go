package session

import (
	"context"
	"time"

	"stackrent/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string                `json:"token"`
	Identity Identity              `json:"identity"`
	Perms    authority.Permissions `json:"perms"`

	ExpireTime time.Time       `json:"-"`
	Context    context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	c := *s
	c.Perms = append(authority.Permissions{}, s.Perms...)
	return c
}

type LoginRequest struct {
	Name      string `form:"name"`
	Password  string `form:"password"`
	SecretKey string `form:"secretKey"`
}
