package account

import "github.com/fundwit/go-commons/types"

// Employee fulfills order items. Created and deactivated by admins.
type Employee struct {
	ID             types.ID `json:"id" gorm:"primary_key"`
	Name           string   `json:"name"`
	Email          string   `json:"email" gorm:"unique_index:employee_email_unique"`
	Role           string   `json:"role"`
	Specialization string   `json:"specialization"`
	Active         bool     `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (e *Employee) TableName() string {
	return "employees"
}

type EmployeeCreation struct {
	Name           string `json:"name" binding:"required,lte=64"`
	Email          string `json:"email" binding:"required,email,lte=128"`
	Role           string `json:"role" binding:"required,lte=32"`
	Specialization string `json:"specialization" binding:"lte=64"`
}

type EmployeeQuery struct {
	ActiveOnly bool `form:"activeOnly"`
}
