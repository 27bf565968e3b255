package progress

import (
	"stackrent/account"
	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/persistence"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// placeholders used when an order item references a stack that no longer
// exists; a dangling reference degrades instead of failing the whole view
const (
	PlaceholderStackName        = "Unknown Stack"
	PlaceholderStackType        = "General"
	PlaceholderStackDescription = "No description available"
)

var LoadStacksByIDsFunc = LoadStacksByIDs

// OrderItemProgress is the display-ready progress view of one order item.
type OrderItemProgress struct {
	domain.OrderItem

	StackName        string `json:"stackName"`
	StackType        string `json:"stackType"`
	StackDescription string `json:"stackDescription"`
	StatusLabel      string `json:"statusLabel"`
}

type ManagerTraits interface {
	QueryUserProgress(userID types.ID, sec *session.Session) (*[]OrderItemProgress, error)
}

type Manager struct {
	ds *persistence.DataSourceManager
}

func NewManager(ds *persistence.DataSourceManager) *Manager {
	return &Manager{ds: ds}
}

// QueryUserProgress merges a user's order items with stack metadata. Stacks
// are fetched in one batched query over the distinct id set, never per item.
// Any sub-query failure aborts the whole aggregation.
func (m *Manager) QueryUserProgress(userID types.ID, sec *session.Session) (*[]OrderItemProgress, error) {
	if sec.Identity.ID != userID && !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return nil, bizerror.ErrForbidden
	}

	db := m.ds.GormDB(sec.Context)
	var items []domain.OrderItem
	if err := db.Where(&domain.OrderItem{UserID: userID}).
		Order("create_time DESC").Find(&items).Error; err != nil {
		return nil, err
	}

	stackIDs := distinctStackIDs(items)
	stacks, err := LoadStacksByIDsFunc(db, stackIDs)
	if err != nil {
		return nil, err
	}

	results := make([]OrderItemProgress, 0, len(items))
	for _, item := range items {
		detail := OrderItemProgress{
			OrderItem:        item,
			StackName:        PlaceholderStackName,
			StackType:        PlaceholderStackType,
			StackDescription: PlaceholderStackDescription,
			StatusLabel:      item.Status.DisplayLabel(),
		}
		if stack, found := stacks[item.StackID]; found {
			detail.StackName = stack.Name
			detail.StackType = stack.Type
			detail.StackDescription = stack.Description
		}
		results = append(results, detail)
	}
	return &results, nil
}

// LoadStacksByIDs fetches the given stacks with a single in-list query.
func LoadStacksByIDs(db *gorm.DB, ids []types.ID) (map[types.ID]domain.Stack, error) {
	result := map[types.ID]domain.Stack{}
	if len(ids) == 0 {
		return result, nil
	}

	var stacks []domain.Stack
	if err := db.Where("id IN (?)", ids).Find(&stacks).Error; err != nil {
		return nil, err
	}
	for _, stack := range stacks {
		result[stack.ID] = stack
	}
	return result, nil
}

func distinctStackIDs(items []domain.OrderItem) []types.ID {
	seen := map[types.ID]bool{}
	ids := make([]types.ID, 0, len(items))
	for _, item := range items {
		if seen[item.StackID] {
			continue
		}
		seen[item.StackID] = true
		ids = append(ids, item.StackID)
	}
	return ids
}
