package domain

import (
	"strings"

	"stackrent/domain/state"

	"github.com/fundwit/go-commons/types"
)

type Order struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	UserID     types.ID `json:"userId"`
	TotalPrice float64  `json:"totalPrice"`
	Discount   float64  `json:"discount"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderItem is one purchased Stack instance within an Order, tracked through
// the fulfillment lifecycle. AssignedTo is zero while no effective assignment
// references the item.
type OrderItem struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	OrderID     types.ID `json:"orderId"`
	UserID      types.ID `json:"userId"`
	StackID     types.ID `json:"stackId"`
	SubStackIDs string   `json:"subStackIds"`

	Status          state.Status `json:"status"`
	ProgressPercent int          `json:"progressPercent"`
	Step            int          `json:"step"`
	ETA             types.Timestamp `json:"eta" sql:"type:DATETIME(6)"`
	AssignedTo      types.ID     `json:"assignedTo"`
	TotalPrice      float64      `json:"totalPrice"`

	CreateTime      types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
	StatusBeginTime types.Timestamp `json:"statusBeginTime" sql:"type:DATETIME(6)"`
}

func (i *OrderItem) TableName() string {
	return "order_items"
}

// CartStack is one stack (with optional sub-stacks) placed in a user's cart,
// carrying the price computed when it was added.
type CartStack struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	UserID      types.ID `json:"userId"`
	StackID     types.ID `json:"stackId"`
	SubStackIDs string   `json:"subStackIds"`
	TotalPrice  float64  `json:"totalPrice"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (c *CartStack) TableName() string {
	return "cart_stacks"
}

// JoinIDs renders an id list into the comma separated column format.
func JoinIDs(ids []types.ID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ",")
}

// SplitIDs parses the comma separated column format, dropping malformed parts.
func SplitIDs(joined string) []types.ID {
	ids := []types.ID{}
	if joined == "" {
		return ids
	}
	for _, part := range strings.Split(joined, ",") {
		id, err := types.ParseID(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
