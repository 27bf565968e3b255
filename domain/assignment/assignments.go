package assignment

import (
	"errors"

	"stackrent/account"
	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/domain/state"
	"stackrent/idgen"
	"stackrent/persistence"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

type ManagerTraits interface {
	AssignOrderItem(c *AssignmentCreation, sec *session.Session) (*Assignment, error)
	RevokeAssignment(id types.ID, sec *session.Session) error
	QueryAssignments(q *AssignmentsQuery, sec *session.Session) (*[]Assignment, error)
	TransitionOrderItemStatus(t *StatusTransition, sec *session.Session) error
	UpdateOrderItemProgress(u *ProgressUpdate, sec *session.Session) error
}

type Manager struct {
	ds       *persistence.DataSourceManager
	idWorker *sonyflake.Sonyflake
}

func NewManager(ds *persistence.DataSourceManager) *Manager {
	return &Manager{ds: ds, idWorker: sonyflake.NewSonyflake(sonyflake.Settings{})}
}

// AssignOrderItem creates an effective assignment for an unassigned order
// item. The item's assigned_to column is compare-and-set inside the
// transaction, so of two concurrent assigns exactly one wins. A revoked
// record of the same (item, employee) pair is revived instead of duplicated.
func (m *Manager) AssignOrderItem(c *AssignmentCreation, sec *session.Session) (*Assignment, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db := m.ds.GormDB(sec.Context)
	var record Assignment
	err := db.Transaction(func(tx *gorm.DB) error {
		employee := account.Employee{ID: c.EmployeeID}
		if err := tx.Where(&employee).First(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if !employee.Active {
			return bizerror.ErrEmployeeInactive
		}

		item := domain.OrderItem{ID: c.OrderItemID}
		if err := tx.Where(&item).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		ret := tx.Model(&domain.OrderItem{}).
			Where("id = ? AND assigned_to = 0", c.OrderItemID).
			Update("assigned_to", c.EmployeeID)
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected != 1 {
			return bizerror.ErrAlreadyAssigned
		}

		now := types.CurrentTimestamp()
		err := tx.Where(&Assignment{OrderItemID: c.OrderItemID, EmployeeID: c.EmployeeID}).First(&record).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			record = Assignment{
				ID: idgen.NextID(m.idWorker), OrderItemID: c.OrderItemID, EmployeeID: c.EmployeeID,
				EmployeeName: employee.Name, Status: StatusAssigned, Notes: c.Notes,
				AssignTime: now, Effective: true,
			}
		} else if err != nil {
			return err
		} else {
			record.EmployeeName = employee.Name
			record.Status = StatusAssigned
			record.Notes = c.Notes
			record.AssignTime = now
			record.EndTime = types.Timestamp{}
			record.Effective = true
		}

		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RevokeAssignment soft-deletes an assignment: the record turns into revoked
// history and the order item's assigned_to is cleared, touching no other item.
func (m *Manager) RevokeAssignment(id types.ID, sec *session.Session) error {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	return m.ds.GormDB(sec.Context).Transaction(func(tx *gorm.DB) error {
		record := Assignment{ID: id}
		if err := tx.Where(&record).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if !record.Effective {
			return bizerror.ErrAssignmentRevoked
		}

		ret := tx.Model(&Assignment{}).Where("id = ? AND effective = ?", id, true).
			Update(map[string]interface{}{
				"status": StatusRevoked, "end_time": types.CurrentTimestamp(), "effective": false,
			})
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected != 1 {
			return bizerror.ErrAssignmentRevoked
		}

		return tx.Model(&domain.OrderItem{}).
			Where("id = ? AND assigned_to = ?", record.OrderItemID, record.EmployeeID).
			Update("assigned_to", 0).Error
	})
}

func (m *Manager) QueryAssignments(q *AssignmentsQuery, sec *session.Session) (*[]Assignment, error) {
	records := []Assignment{}
	if len(q.OrderItemIDs) == 0 {
		return &records, nil
	}

	db := m.ds.GormDB(sec.Context).Where("order_item_id IN (?)", q.OrderItemIDs)
	if !q.IncludeRevoked {
		db = db.Where("effective = ?", true)
	}
	// non-admin callers see only their own records
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		db = db.Where("employee_id = ?", sec.Identity.ID)
	}
	if err := db.Order("assign_time DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return &records, nil
}

// TransitionOrderItemStatus advances an order item through the fulfillment
// lifecycle. Transitions are monotonic; skipping stages is allowed, moving
// backwards is not. The update is conditional on the expected source status,
// so a stale or concurrent transition fails instead of double-applying.
func (m *Manager) TransitionOrderItemStatus(t *StatusTransition, sec *session.Session) error {
	from := t.FromStatus.Normalize()
	to := t.ToStatus.Normalize()
	if !from.IsValid() || !to.IsValid() {
		return bizerror.ErrUnknownStatus
	}
	if !state.AvailableTransition(from, to) {
		return bizerror.ErrInvalidStatusTransition
	}

	db := m.ds.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		item := domain.OrderItem{ID: t.OrderItemID}
		if err := tx.Where(&item).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if err := checkWorkerPermission(&item, sec); err != nil {
			return err
		}

		now := types.CurrentTimestamp()
		ret := tx.Model(&domain.OrderItem{}).
			Where("id = ? AND status IN (?)", t.OrderItemID, from.Aliases()).
			Update(map[string]interface{}{"status": to, "status_begin_time": now})
		if ret.Error != nil {
			return ret.Error
		}
		if ret.RowsAffected != 1 {
			return bizerror.ErrInvalidStatusTransition
		}

		if to == state.InProgress {
			if err := tx.Model(&Assignment{}).
				Where("order_item_id = ? AND effective = ? AND status = ?", t.OrderItemID, true, StatusAssigned).
				Update("status", StatusInProgress).Error; err != nil {
				return err
			}
		}
		if to == state.Completed {
			if err := tx.Model(&domain.OrderItem{}).Where("id = ?", t.OrderItemID).
				Update("progress_percent", 100).Error; err != nil {
				return err
			}
			if err := tx.Model(&Assignment{}).
				Where("order_item_id = ? AND effective = ?", t.OrderItemID, true).
				Update(map[string]interface{}{"status": StatusCompleted, "end_time": now}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *Manager) UpdateOrderItemProgress(u *ProgressUpdate, sec *session.Session) error {
	if u.ProgressPercent < 0 || u.ProgressPercent > 100 {
		return bizerror.ErrInvalidArguments
	}
	if u.Step < 0 {
		return bizerror.ErrInvalidArguments
	}

	db := m.ds.GormDB(sec.Context)
	item := domain.OrderItem{ID: u.OrderItemID}
	if err := db.Where(&item).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	if err := checkWorkerPermission(&item, sec); err != nil {
		return err
	}

	return db.Model(&domain.OrderItem{}).Where("id = ?", u.OrderItemID).
		Update(map[string]interface{}{
			"progress_percent": u.ProgressPercent, "step": u.Step, "eta": u.ETA,
		}).Error
}

// checkWorkerPermission admits admins and the employee currently assigned to
// the item.
func checkWorkerPermission(item *domain.OrderItem, sec *session.Session) error {
	if sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil
	}
	if sec.Perms.HasRole(account.EmployeePermission.ID) && item.AssignedTo == sec.Identity.ID {
		return nil
	}
	return bizerror.ErrForbidden
}
