package session

import (
	"github.com/fundwit/go-commons/types"
)

// Record is one persisted admin session. The row is the source of truth, the
// in-memory token cache only fronts it.
type Record struct {
	Token  string   `json:"-" gorm:"primary_key;size:64"`
	UserID types.ID `json:"userId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	ExpireTime types.Timestamp `json:"expireTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *Record) TableName() string {
	return "admin_sessions"
}
