package assignment

import (
	"stackrent/domain/state"

	"github.com/fundwit/go-commons/types"
)

type Status string

const (
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"

	// StatusRevoked marks an unassigned record kept for reporting.
	StatusRevoked Status = "revoked"
)

// Assignment links one employee to one order item. At most one effective
// assignment exists per order item; revoked records stay as history.
type Assignment struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	OrderItemID types.ID `json:"orderItemId" gorm:"unique_index:item_employee_unique"`
	EmployeeID  types.ID `json:"employeeId" gorm:"unique_index:item_employee_unique"`

	EmployeeName string `json:"employeeName"`
	Status       Status `json:"status"`
	Notes        string `json:"notes"`

	AssignTime types.Timestamp `json:"assignTime" sql:"type:DATETIME(6) NOT NULL"`
	EndTime    types.Timestamp `json:"endTime" sql:"type:DATETIME(6)"`

	Effective bool `json:"effective"`
}

func (r *Assignment) TableName() string {
	return "assignments"
}

type AssignmentCreation struct {
	OrderItemID types.ID `json:"orderItemId" binding:"required"`
	EmployeeID  types.ID `json:"employeeId" binding:"required"`
	Notes       string   `json:"notes"`
}

type AssignmentsQuery struct {
	OrderItemIDs   []types.ID `form:"orderItemId" json:"orderItemIds"`
	IncludeRevoked bool       `form:"includeRevoked" json:"includeRevoked"`
}

type StatusTransition struct {
	OrderItemID types.ID     `json:"orderItemId" binding:"required"`
	FromStatus  state.Status `json:"fromStatus" binding:"required"`
	ToStatus    state.Status `json:"toStatus" binding:"required"`
}

type ProgressUpdate struct {
	OrderItemID     types.ID        `json:"orderItemId" binding:"required"`
	ProgressPercent int             `json:"progressPercent"`
	Step            int             `json:"step"`
	ETA             types.Timestamp `json:"eta"`
}
