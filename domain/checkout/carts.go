package checkout

import (
	"errors"

	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/idgen"
	"stackrent/persistence"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

type CartStackCreation struct {
	StackID     types.ID   `json:"stackId" binding:"required"`
	SubStackIDs []types.ID `json:"subStackIds"`
}

type CheckoutRequest struct {
	Discount float64 `json:"discount" binding:"gte=0"`
}

type OrderDetail struct {
	domain.Order

	Items []domain.OrderItem `json:"items"`
}

type ManagerTraits interface {
	AddToCart(c *CartStackCreation, sec *session.Session) (*domain.CartStack, error)
	QueryCart(sec *session.Session) (*[]domain.CartStack, error)
	RemoveFromCart(id types.ID, sec *session.Session) error
	Checkout(c *CheckoutRequest, sec *session.Session) (*OrderDetail, error)
}

type Manager struct {
	ds       *persistence.DataSourceManager
	idWorker *sonyflake.Sonyflake
}

func NewManager(ds *persistence.DataSourceManager) *Manager {
	return &Manager{ds: ds, idWorker: sonyflake.NewSonyflake(sonyflake.Settings{})}
}

// AddToCart places one stack with optional sub-stacks into the caller's cart.
// The row carries the price computed now; later catalog changes do not
// reprice carts.
func (m *Manager) AddToCart(c *CartStackCreation, sec *session.Session) (*domain.CartStack, error) {
	db := m.ds.GormDB(sec.Context)

	stack := domain.Stack{ID: c.StackID}
	if err := db.Where(&stack).First(&stack).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	if !stack.Active {
		return nil, bizerror.ErrNotFound
	}

	total := stack.BasePrice
	if len(c.SubStackIDs) > 0 {
		subStacks, err := loadSubStacksByIDs(db, c.SubStackIDs)
		if err != nil {
			return nil, err
		}
		for _, id := range c.SubStackIDs {
			subStack, found := subStacks[id]
			if !found || subStack.StackID != c.StackID {
				return nil, bizerror.ErrInvalidArguments
			}
			total += subStack.BasePrice
		}
	}

	cartStack := domain.CartStack{
		ID: idgen.NextID(m.idWorker), UserID: sec.Identity.ID, StackID: c.StackID,
		SubStackIDs: domain.JoinIDs(c.SubStackIDs), TotalPrice: total,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := db.Create(&cartStack).Error; err != nil {
		return nil, err
	}
	return &cartStack, nil
}

func (m *Manager) QueryCart(sec *session.Session) (*[]domain.CartStack, error) {
	var cartStacks []domain.CartStack
	if err := m.ds.GormDB(sec.Context).Where(&domain.CartStack{UserID: sec.Identity.ID}).
		Order("create_time DESC").Find(&cartStacks).Error; err != nil {
		return nil, err
	}
	return &cartStacks, nil
}

func (m *Manager) RemoveFromCart(id types.ID, sec *session.Session) error {
	ret := m.ds.GormDB(sec.Context).
		Where("id = ? AND user_id = ?", id, sec.Identity.ID).Delete(&domain.CartStack{})
	if ret.Error != nil {
		return ret.Error
	}
	if ret.RowsAffected != 1 {
		return bizerror.ErrNotFound
	}
	return nil
}

func loadSubStacksByIDs(db *gorm.DB, ids []types.ID) (map[types.ID]domain.SubStack, error) {
	result := map[types.ID]domain.SubStack{}
	if len(ids) == 0 {
		return result, nil
	}
	var subStacks []domain.SubStack
	if err := db.Where("id IN (?)", ids).Find(&subStacks).Error; err != nil {
		return nil, err
	}
	for _, subStack := range subStacks {
		result[subStack.ID] = subStack
	}
	return result, nil
}
