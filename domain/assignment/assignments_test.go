package assignment_test

import (
	"sync"

	"stackrent/account"
	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/domain/assignment"
	"stackrent/domain/state"
	"stackrent/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Assignments", func() {
	var (
		testDatabase *testinfra.TestDatabase
		db           *gorm.DB
		manager      *assignment.Manager

		employee1, employee2, inactiveEmployee *account.Employee
		item1, item2                           *domain.OrderItem
	)
	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("stackrent")
		db = testDatabase.DS.GormDB(nil)
		Expect(db.AutoMigrate(&assignment.Assignment{}, &domain.OrderItem{}, &account.Employee{}).Error).To(BeNil())
		manager = assignment.NewManager(testDatabase.DS)

		employee1 = &account.Employee{ID: 100, Name: "Ann Worker", Email: "ann@example.com", Role: "engineer", Active: true, CreateTime: types.CurrentTimestamp()}
		employee2 = &account.Employee{ID: 101, Name: "Ben Worker", Email: "ben@example.com", Role: "engineer", Active: true, CreateTime: types.CurrentTimestamp()}
		inactiveEmployee = &account.Employee{ID: 102, Name: "Gone Worker", Email: "gone@example.com", Role: "engineer", Active: false, CreateTime: types.CurrentTimestamp()}
		Expect(db.Save(employee1).Error).To(BeNil())
		Expect(db.Save(employee2).Error).To(BeNil())
		Expect(db.Save(inactiveEmployee).Error).To(BeNil())

		item1 = &domain.OrderItem{ID: 200, OrderID: 20, UserID: 30, StackID: 40,
			Status: state.Initiated, CreateTime: types.CurrentTimestamp(), StatusBeginTime: types.CurrentTimestamp()}
		item2 = &domain.OrderItem{ID: 201, OrderID: 20, UserID: 30, StackID: 41,
			Status: state.Initiated, CreateTime: types.CurrentTimestamp(), StatusBeginTime: types.CurrentTimestamp()}
		Expect(db.Save(item1).Error).To(BeNil())
		Expect(db.Save(item2).Error).To(BeNil())
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("AssignOrderItem", func() {
		It("should be forbidden for non-admin users", func() {
			sec := testinfra.BuildSecCtx(1, account.EmployeePermission.ID)
			record, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(Equal(bizerror.ErrForbidden))
			Expect(record).To(BeNil())
		})

		It("should create an effective assignment and mark the item", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			record, err := manager.AssignOrderItem(&assignment.AssignmentCreation{
				OrderItemID: item1.ID, EmployeeID: employee1.ID, Notes: "rush order"}, sec)
			Expect(err).To(BeNil())
			Expect(record.ID).ToNot(BeZero())
			Expect(record.OrderItemID).To(Equal(item1.ID))
			Expect(record.EmployeeID).To(Equal(employee1.ID))
			Expect(record.EmployeeName).To(Equal(employee1.Name))
			Expect(record.Status).To(Equal(assignment.StatusAssigned))
			Expect(record.Notes).To(Equal("rush order"))
			Expect(record.Effective).To(BeTrue())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.AssignedTo).To(Equal(employee1.ID))
		})

		It("should refuse an item that already has an effective assignment", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			_, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())

			record, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee2.ID}, sec)
			Expect(err).To(Equal(bizerror.ErrAlreadyAssigned))
			Expect(record).To(BeNil())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.AssignedTo).To(Equal(employee1.ID))
		})

		It("should let exactly one of concurrent assigns win", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			employees := []types.ID{employee1.ID, employee2.ID}

			var wg sync.WaitGroup
			results := make([]error, len(employees))
			for i := range employees {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					defer GinkgoRecover()
					_, results[i] = manager.AssignOrderItem(&assignment.AssignmentCreation{
						OrderItemID: item1.ID, EmployeeID: employees[i]}, sec)
				}(i)
			}
			wg.Wait()

			succeeded := 0
			for _, err := range results {
				if err == nil {
					succeeded++
				} else {
					Expect(err).To(Equal(bizerror.ErrAlreadyAssigned))
				}
			}
			Expect(succeeded).To(Equal(1))

			effective := []assignment.Assignment{}
			Expect(db.Where("order_item_id = ? AND effective = ?", item1.ID, true).Find(&effective).Error).To(BeNil())
			Expect(len(effective)).To(Equal(1))
		})

		It("should refuse unknown employees and unknown items", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			_, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: 404}, sec)
			Expect(err).To(Equal(bizerror.ErrNotFound))

			_, err = manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: 404, EmployeeID: employee1.ID}, sec)
			Expect(err).To(Equal(bizerror.ErrNotFound))
		})

		It("should refuse inactive employees", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			_, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: inactiveEmployee.ID}, sec)
			Expect(err).To(Equal(bizerror.ErrEmployeeInactive))

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.AssignedTo).To(BeZero())
		})

		It("should revive a revoked record of the same pair instead of duplicating", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			first, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())
			Expect(manager.RevokeAssignment(first.ID, sec)).To(BeNil())

			second, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())
			Expect(second.ID).To(Equal(first.ID))
			Expect(second.Status).To(Equal(assignment.StatusAssigned))
			Expect(second.Effective).To(BeTrue())
			Expect(second.EndTime.Time().IsZero()).To(BeTrue())

			records := []assignment.Assignment{}
			Expect(db.Where("order_item_id = ?", item1.ID).Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
		})
	})

	Describe("RevokeAssignment", func() {
		It("should be forbidden for non-admin users", func() {
			admin := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			record, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, admin)
			Expect(err).To(BeNil())

			sec := testinfra.BuildSecCtx(employee1.ID, account.EmployeePermission.ID)
			Expect(manager.RevokeAssignment(record.ID, sec)).To(Equal(bizerror.ErrForbidden))
		})

		It("should turn the record into revoked history and free only its own item", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			record1, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())
			_, err = manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item2.ID, EmployeeID: employee2.ID}, sec)
			Expect(err).To(BeNil())

			Expect(manager.RevokeAssignment(record1.ID, sec)).To(BeNil())

			revoked := assignment.Assignment{ID: record1.ID}
			Expect(db.Where(&revoked).First(&revoked).Error).To(BeNil())
			Expect(revoked.Status).To(Equal(assignment.StatusRevoked))
			Expect(revoked.Effective).To(BeFalse())
			Expect(revoked.EndTime.Time().IsZero()).To(BeFalse())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.AssignedTo).To(BeZero())

			other := domain.OrderItem{ID: item2.ID}
			Expect(db.Where(&other).First(&other).Error).To(BeNil())
			Expect(other.AssignedTo).To(Equal(employee2.ID))
		})

		It("should refuse an already revoked record and a missing record", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			record, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())

			Expect(manager.RevokeAssignment(record.ID, sec)).To(BeNil())
			Expect(manager.RevokeAssignment(record.ID, sec)).To(Equal(bizerror.ErrAssignmentRevoked))
			Expect(manager.RevokeAssignment(404, sec)).To(Equal(bizerror.ErrNotFound))
		})
	})

	Describe("QueryAssignments", func() {
		It("should return an empty list when no item ids are given", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			records, err := manager.QueryAssignments(&assignment.AssignmentsQuery{}, sec)
			Expect(err).To(BeNil())
			Expect(*records).To(BeEmpty())
		})

		It("should hide revoked records unless asked for", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			record1, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())
			Expect(manager.RevokeAssignment(record1.ID, sec)).To(BeNil())
			record2, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee2.ID}, sec)
			Expect(err).To(BeNil())

			records, err := manager.QueryAssignments(&assignment.AssignmentsQuery{OrderItemIDs: []types.ID{item1.ID}}, sec)
			Expect(err).To(BeNil())
			Expect(len(*records)).To(Equal(1))
			Expect((*records)[0].ID).To(Equal(record2.ID))

			records, err = manager.QueryAssignments(&assignment.AssignmentsQuery{
				OrderItemIDs: []types.ID{item1.ID}, IncludeRevoked: true}, sec)
			Expect(err).To(BeNil())
			Expect(len(*records)).To(Equal(2))
		})

		It("should restrict non-admin callers to their own records", func() {
			admin := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			_, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, admin)
			Expect(err).To(BeNil())
			_, err = manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item2.ID, EmployeeID: employee2.ID}, admin)
			Expect(err).To(BeNil())

			sec := testinfra.BuildSecCtx(employee1.ID, account.EmployeePermission.ID)
			records, err := manager.QueryAssignments(&assignment.AssignmentsQuery{
				OrderItemIDs: []types.ID{item1.ID, item2.ID}}, sec)
			Expect(err).To(BeNil())
			Expect(len(*records)).To(Equal(1))
			Expect((*records)[0].EmployeeID).To(Equal(employee1.ID))
		})
	})

	Describe("TransitionOrderItemStatus", func() {
		It("should refuse unknown statuses and backward moves", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: "weird_status", ToStatus: state.InProgress}, sec)).
				To(Equal(bizerror.ErrUnknownStatus))
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Completed, ToStatus: state.InProgress}, sec)).
				To(Equal(bizerror.ErrInvalidStatusTransition))
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Initiated, ToStatus: state.Initiated}, sec)).
				To(Equal(bizerror.ErrInvalidStatusTransition))
		})

		It("should refuse a stale source status", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.InProgress, ToStatus: state.UnderReview}, sec)).
				To(Equal(bizerror.ErrInvalidStatusTransition))
		})

		It("should advance the item and stamp status_begin_time", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Initiated, ToStatus: state.InProgress}, sec)).To(BeNil())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.Status).To(Equal(state.InProgress))
			Expect(item.StatusBeginTime.Time().IsZero()).To(BeFalse())
		})

		It("should accept the legacy alias as source status", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			Expect(db.Model(&domain.OrderItem{}).Where("id = ?", item1.ID).
				Update("status", state.Done).Error).To(BeNil())

			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Initiated, ToStatus: state.InProgress}, sec)).
				To(Equal(bizerror.ErrInvalidStatusTransition))

			Expect(db.Model(&domain.OrderItem{}).Where("id = ?", item1.ID).
				Update("status", state.InProgress).Error).To(BeNil())
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.InProgress, ToStatus: state.Done}, sec)).To(BeNil())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.Status).To(Equal(state.Completed))
		})

		It("should move effective assignments along with the item", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			record, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, sec)
			Expect(err).To(BeNil())

			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Initiated, ToStatus: state.InProgress}, sec)).To(BeNil())
			reloaded := assignment.Assignment{ID: record.ID}
			Expect(db.Where(&reloaded).First(&reloaded).Error).To(BeNil())
			Expect(reloaded.Status).To(Equal(assignment.StatusInProgress))

			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.InProgress, ToStatus: state.Completed}, sec)).To(BeNil())
			reloaded = assignment.Assignment{ID: record.ID}
			Expect(db.Where(&reloaded).First(&reloaded).Error).To(BeNil())
			Expect(reloaded.Status).To(Equal(assignment.StatusCompleted))
			Expect(reloaded.EndTime.Time().IsZero()).To(BeFalse())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.ProgressPercent).To(Equal(100))
		})

		It("should admit only the assigned employee besides admins", func() {
			admin := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			_, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, admin)
			Expect(err).To(BeNil())

			stranger := testinfra.BuildSecCtx(employee2.ID, account.EmployeePermission.ID)
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Initiated, ToStatus: state.InProgress}, stranger)).
				To(Equal(bizerror.ErrForbidden))

			worker := testinfra.BuildSecCtx(employee1.ID, account.EmployeePermission.ID)
			Expect(manager.TransitionOrderItemStatus(&assignment.StatusTransition{
				OrderItemID: item1.ID, FromStatus: state.Initiated, ToStatus: state.InProgress}, worker)).To(BeNil())
		})
	})

	Describe("UpdateOrderItemProgress", func() {
		It("should validate the progress range and step", func() {
			sec := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			Expect(manager.UpdateOrderItemProgress(&assignment.ProgressUpdate{
				OrderItemID: item1.ID, ProgressPercent: 101}, sec)).To(Equal(bizerror.ErrInvalidArguments))
			Expect(manager.UpdateOrderItemProgress(&assignment.ProgressUpdate{
				OrderItemID: item1.ID, ProgressPercent: -1}, sec)).To(Equal(bizerror.ErrInvalidArguments))
			Expect(manager.UpdateOrderItemProgress(&assignment.ProgressUpdate{
				OrderItemID: item1.ID, ProgressPercent: 10, Step: -1}, sec)).To(Equal(bizerror.ErrInvalidArguments))
		})

		It("should persist progress for permitted callers", func() {
			admin := testinfra.BuildSecCtx(1, account.SystemAdminPermission.ID)
			_, err := manager.AssignOrderItem(&assignment.AssignmentCreation{OrderItemID: item1.ID, EmployeeID: employee1.ID}, admin)
			Expect(err).To(BeNil())

			worker := testinfra.BuildSecCtx(employee1.ID, account.EmployeePermission.ID)
			eta := types.CurrentTimestamp()
			Expect(manager.UpdateOrderItemProgress(&assignment.ProgressUpdate{
				OrderItemID: item1.ID, ProgressPercent: 40, Step: 2, ETA: eta}, worker)).To(BeNil())

			item := domain.OrderItem{ID: item1.ID}
			Expect(db.Where(&item).First(&item).Error).To(BeNil())
			Expect(item.ProgressPercent).To(Equal(40))
			Expect(item.Step).To(Equal(2))

			stranger := testinfra.BuildSecCtx(employee2.ID, account.EmployeePermission.ID)
			Expect(manager.UpdateOrderItemProgress(&assignment.ProgressUpdate{
				OrderItemID: item1.ID, ProgressPercent: 50}, stranger)).To(Equal(bizerror.ErrForbidden))
		})
	})
})
