package checkout

import (
	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/domain/state"
	"stackrent/idgen"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// Checkout converts every cart row of the caller into one order plus one
// order item per row, then clears the cart. The whole conversion is one
// transaction: any lookup or insert failure rolls everything back, so no
// partial order or half-cleared cart is ever left behind.
func (m *Manager) Checkout(c *CheckoutRequest, sec *session.Session) (*OrderDetail, error) {
	userID := sec.Identity.ID
	db := m.ds.GormDB(sec.Context)

	var detail *OrderDetail
	err := db.Transaction(func(tx *gorm.DB) error {
		var cartStacks []domain.CartStack
		if err := tx.Where(&domain.CartStack{UserID: userID}).
			Order("create_time ASC").Find(&cartStacks).Error; err != nil {
			return err
		}
		if len(cartStacks) == 0 {
			return bizerror.ErrEmptyCart
		}

		stackIDs := make([]types.ID, 0, len(cartStacks))
		subStackIDs := []types.ID{}
		for _, cartStack := range cartStacks {
			stackIDs = append(stackIDs, cartStack.StackID)
			subStackIDs = append(subStackIDs, domain.SplitIDs(cartStack.SubStackIDs)...)
		}

		var stacks []domain.Stack
		if err := tx.Where("id IN (?)", stackIDs).Find(&stacks).Error; err != nil {
			return err
		}
		knownStacks := map[types.ID]bool{}
		for _, stack := range stacks {
			knownStacks[stack.ID] = true
		}

		subStacks, err := loadSubStacksByIDs(tx, subStackIDs)
		if err != nil {
			return err
		}

		subtotal := 0.0
		for _, cartStack := range cartStacks {
			if !knownStacks[cartStack.StackID] {
				return bizerror.ErrNotFound
			}
			for _, id := range domain.SplitIDs(cartStack.SubStackIDs) {
				if _, found := subStacks[id]; !found {
					return bizerror.ErrNotFound
				}
			}
			subtotal += cartStack.TotalPrice
		}

		total := subtotal - c.Discount
		if total < 0 {
			total = 0
		}

		now := types.CurrentTimestamp()
		order := domain.Order{
			ID: idgen.NextID(m.idWorker), UserID: userID,
			TotalPrice: total, Discount: c.Discount, CreateTime: now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(cartStacks))
		for _, cartStack := range cartStacks {
			item := domain.OrderItem{
				ID: idgen.NextID(m.idWorker), OrderID: order.ID, UserID: userID,
				StackID: cartStack.StackID, SubStackIDs: cartStack.SubStackIDs,
				Status: state.Initiated, ProgressPercent: 0, Step: 0,
				TotalPrice: cartStack.TotalPrice,
				CreateTime: now, StatusBeginTime: now,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			items = append(items, item)
		}

		if err := tx.Where(&domain.CartStack{UserID: userID}).Delete(&domain.CartStack{}).Error; err != nil {
			return err
		}

		detail = &OrderDetail{Order: order, Items: items}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}
