package account

import "github.com/fundwit/go-commons/types"

type Permission struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

var (
	SystemAdminPermission = Permission{ID: "system:admin", Title: "System Administrator"}
	EmployeePermission    = Permission{ID: "system:employee", Title: "Employee"}
)

// User is an admin account. Secret and SecretKey are salted sha256 digests,
// never raw values.
type User struct {
	ID   types.ID `json:"id" gorm:"primary_key"`
	Name string   `json:"name" gorm:"unique_index:user_name_unique"`

	Secret    string `json:"-"`
	SecretKey string `json:"-"`
	Salt      string `json:"-"`

	Nickname string `json:"nickname"`
	Active   bool   `json:"active"`
}

func (u *User) TableName() string {
	return "users"
}

func (u User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}
