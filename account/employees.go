package account

import (
	"errors"

	"stackrent/authority"
	"stackrent/bizerror"
	"stackrent/idgen"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

type ManagerTraits interface {
	AuthenticateAdmin(name, password, secretKey string) (*session.Identity, authority.Permissions, error)
	LoadSessionUser(userID types.ID) (*session.Identity, authority.Permissions, error)

	CreateEmployee(c *EmployeeCreation, sec *session.Session) (*Employee, error)
	QueryEmployees(q *EmployeeQuery, sec *session.Session) (*[]Employee, error)
	DeactivateEmployee(id types.ID, sec *session.Session) error
}

func (m *Manager) CreateEmployee(c *EmployeeCreation, sec *session.Session) (*Employee, error) {
	if !sec.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	employee := Employee{
		ID: idgen.NextID(m.idWorker), Name: c.Name, Email: c.Email,
		Role: c.Role, Specialization: c.Specialization, Active: true,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := m.ds.GormDB(sec.Context).Create(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (m *Manager) QueryEmployees(q *EmployeeQuery, sec *session.Session) (*[]Employee, error) {
	if !sec.Perms.HasRole(SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db := m.ds.GormDB(sec.Context).Model(&Employee{})
	if q.ActiveOnly {
		db = db.Where("active = ?", true)
	}
	var employees []Employee
	if err := db.Order("create_time DESC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return &employees, nil
}

// DeactivateEmployee marks the employee inactive. Existing assignments are
// untouched; new assignments to the employee are rejected.
func (m *Manager) DeactivateEmployee(id types.ID, sec *session.Session) error {
	if !sec.Perms.HasRole(SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}

	ret := m.ds.GormDB(sec.Context).Model(&Employee{}).Where(&Employee{ID: id}).Update("active", false)
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected != 1 {
		var employee Employee
		if err := m.ds.GormDB(sec.Context).Where(&Employee{ID: id}).First(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
	}
	return nil
}
