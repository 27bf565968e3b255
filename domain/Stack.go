package domain

import (
	"github.com/fundwit/go-commons/types"
)

// Stack is a purchasable bundle of business services. Catalog data, read-only
// from the workflow's perspective.
type Stack struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"basePrice"`
	Active      bool     `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (s *Stack) TableName() string {
	return "stacks"
}

// SubStack is an optional add-on module within a Stack.
type SubStack struct {
	ID          types.ID `json:"id" gorm:"primary_key"`
	StackID     types.ID `json:"stackId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"basePrice"`
	Active      bool     `json:"active"`
}

func (s *SubStack) TableName() string {
	return "sub_stacks"
}

type StackCreation struct {
	Name        string  `json:"name" binding:"required,lte=128"`
	Type        string  `json:"type" binding:"required,lte=32"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"basePrice" binding:"gte=0"`
}

type StackUpdating struct {
	Name        string  `json:"name" binding:"required,lte=128"`
	Type        string  `json:"type" binding:"required,lte=32"`
	Description string  `json:"description"`
	BasePrice   float64 `json:"basePrice" binding:"gte=0"`
	Active      bool    `json:"active"`
}

type SubStackCreation struct {
	StackID     types.ID `json:"stackId" binding:"required"`
	Name        string   `json:"name" binding:"required,lte=128"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"basePrice" binding:"gte=0"`
}

type StackQuery struct {
	Type       string `form:"type"`
	ActiveOnly bool   `form:"activeOnly"`
}
