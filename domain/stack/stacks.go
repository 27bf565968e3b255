package stack

import (
	"errors"

	"stackrent/account"
	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/idgen"
	"stackrent/persistence"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

type ManagerTraits interface {
	QueryStacks(q *domain.StackQuery, sec *session.Session) (*[]domain.Stack, error)
	DetailStack(id types.ID, sec *session.Session) (*domain.Stack, error)
	CreateStack(c *domain.StackCreation, sec *session.Session) (*domain.Stack, error)
	UpdateStack(id types.ID, u *domain.StackUpdating, sec *session.Session) (*domain.Stack, error)
	CreateSubStack(c *domain.SubStackCreation, sec *session.Session) (*domain.SubStack, error)
	QuerySubStacks(stackID types.ID, sec *session.Session) (*[]domain.SubStack, error)
}

type Manager struct {
	ds       *persistence.DataSourceManager
	idWorker *sonyflake.Sonyflake

	// NotifyIndexFunc pushes catalog mutations into the search index.
	// Best effort: failures are logged, the mutation stands.
	NotifyIndexFunc func(stacks []domain.Stack)
}

func NewManager(ds *persistence.DataSourceManager) *Manager {
	return &Manager{ds: ds, idWorker: sonyflake.NewSonyflake(sonyflake.Settings{})}
}

func (m *Manager) QueryStacks(q *domain.StackQuery, sec *session.Session) (*[]domain.Stack, error) {
	db := m.ds.GormDB(sec.Context).Model(&domain.Stack{})
	if q.Type != "" {
		db = db.Where(&domain.Stack{Type: q.Type})
	}
	if q.ActiveOnly || !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		db = db.Where("active = ?", true)
	}

	var stacks []domain.Stack
	if err := db.Order("create_time DESC").Find(&stacks).Error; err != nil {
		return nil, err
	}
	return &stacks, nil
}

func (m *Manager) DetailStack(id types.ID, sec *session.Session) (*domain.Stack, error) {
	stack := domain.Stack{ID: id}
	if err := m.ds.GormDB(sec.Context).Where(&stack).First(&stack).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if !stack.Active && !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrNotFound
	}
	return &stack, nil
}

func (m *Manager) CreateStack(c *domain.StackCreation, sec *session.Session) (*domain.Stack, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	stack := domain.Stack{
		ID: idgen.NextID(m.idWorker), Name: c.Name, Type: c.Type,
		Description: c.Description, BasePrice: c.BasePrice, Active: true,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := m.ds.GormDB(sec.Context).Create(&stack).Error; err != nil {
		return nil, err
	}

	m.notifyIndex(stack)
	return &stack, nil
}

func (m *Manager) UpdateStack(id types.ID, u *domain.StackUpdating, sec *session.Session) (*domain.Stack, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db := m.ds.GormDB(sec.Context)
	ret := db.Model(&domain.Stack{}).Where(&domain.Stack{ID: id}).
		Update(map[string]interface{}{
			"name": u.Name, "type": u.Type, "description": u.Description,
			"base_price": u.BasePrice, "active": u.Active,
		})
	if ret.Error != nil {
		return nil, ret.Error
	}
	if ret.RowsAffected != 1 {
		return nil, bizerror.ErrNotFound
	}

	stack := domain.Stack{ID: id}
	if err := db.Where(&stack).First(&stack).Error; err != nil {
		return nil, err
	}

	m.notifyIndex(stack)
	return &stack, nil
}

func (m *Manager) CreateSubStack(c *domain.SubStackCreation, sec *session.Session) (*domain.SubStack, error) {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db := m.ds.GormDB(sec.Context)
	parent := domain.Stack{ID: c.StackID}
	if err := db.Where(&parent).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}

	subStack := domain.SubStack{
		ID: idgen.NextID(m.idWorker), StackID: c.StackID, Name: c.Name,
		Description: c.Description, BasePrice: c.BasePrice, Active: true,
	}
	if err := db.Create(&subStack).Error; err != nil {
		return nil, err
	}
	return &subStack, nil
}

func (m *Manager) QuerySubStacks(stackID types.ID, sec *session.Session) (*[]domain.SubStack, error) {
	var subStacks []domain.SubStack
	db := m.ds.GormDB(sec.Context).Where(&domain.SubStack{StackID: stackID})
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		db = db.Where("active = ?", true)
	}
	if err := db.Find(&subStacks).Error; err != nil {
		return nil, err
	}
	return &subStacks, nil
}

func (m *Manager) notifyIndex(stack domain.Stack) {
	if m.NotifyIndexFunc == nil {
		return
	}
	defer func() {
		if ret := recover(); ret != nil {
			logrus.Errorf("stack index notify panic: %v", ret)
		}
	}()
	m.NotifyIndexFunc([]domain.Stack{stack})
}
