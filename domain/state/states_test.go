package state_test

import (
	"stackrent/domain/state"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Status", func() {
	Describe("Normalize", func() {
		It("should map the legacy alias onto the canonical name", func() {
			Expect(state.Done.Normalize()).To(Equal(state.Completed))
			Expect(state.Initiated.Normalize()).To(Equal(state.Initiated))
			Expect(state.InProgress.Normalize()).To(Equal(state.InProgress))
			Expect(state.UnderReview.Normalize()).To(Equal(state.UnderReview))
			Expect(state.Completed.Normalize()).To(Equal(state.Completed))
		})
	})

	Describe("IsValid", func() {
		It("should accept every lifecycle status and the legacy alias", func() {
			Expect(state.Initiated.IsValid()).To(BeTrue())
			Expect(state.InProgress.IsValid()).To(BeTrue())
			Expect(state.UnderReview.IsValid()).To(BeTrue())
			Expect(state.Completed.IsValid()).To(BeTrue())
			Expect(state.Done.IsValid()).To(BeTrue())
		})
		It("should reject unrecognized values", func() {
			Expect(state.Status("").IsValid()).To(BeFalse())
			Expect(state.Status("weird_status").IsValid()).To(BeFalse())
		})
	})

	Describe("Ordinal", func() {
		It("should order the lifecycle forward", func() {
			Expect(state.Initiated.Ordinal()).To(Equal(0))
			Expect(state.InProgress.Ordinal()).To(Equal(1))
			Expect(state.UnderReview.Ordinal()).To(Equal(2))
			Expect(state.Completed.Ordinal()).To(Equal(3))
			Expect(state.Done.Ordinal()).To(Equal(3))
			Expect(state.Status("weird_status").Ordinal()).To(Equal(-1))
		})
	})

	Describe("Category", func() {
		It("should bucket statuses into progress groups", func() {
			Expect(state.Initiated.Category()).To(Equal(state.NotStarted))
			Expect(state.InProgress.Category()).To(Equal(state.InProcess))
			Expect(state.UnderReview.Category()).To(Equal(state.InProcess))
			Expect(state.Completed.Category()).To(Equal(state.Finished))
			Expect(state.Done.Category()).To(Equal(state.Finished))
		})
	})

	Describe("DisplayLabel", func() {
		It("should map every known status to its human label", func() {
			Expect(state.Initiated.DisplayLabel()).To(Equal("Not Started"))
			Expect(state.InProgress.DisplayLabel()).To(Equal("In Progress"))
			Expect(state.UnderReview.DisplayLabel()).To(Equal("Under Review"))
			Expect(state.Completed.DisplayLabel()).To(Equal("Done"))
		})
		It("should give the alias and the canonical name the same label", func() {
			Expect(state.Done.DisplayLabel()).To(Equal(state.Completed.DisplayLabel()))
		})
		It("should pass unrecognized values through unchanged", func() {
			Expect(state.Status("weird_status").DisplayLabel()).To(Equal("weird_status"))
			Expect(state.Status("").DisplayLabel()).To(Equal(""))
		})
	})

	Describe("Aliases", func() {
		It("should list every stored spelling of a status", func() {
			Expect(state.Completed.Aliases()).To(Equal([]state.Status{state.Completed, state.Done}))
			Expect(state.Done.Aliases()).To(Equal([]state.Status{state.Completed, state.Done}))
			Expect(state.InProgress.Aliases()).To(Equal([]state.Status{state.InProgress}))
		})
	})

	Describe("AvailableTransition", func() {
		It("should accept strictly forward moves, skipping stages allowed", func() {
			Expect(state.AvailableTransition(state.Initiated, state.InProgress)).To(BeTrue())
			Expect(state.AvailableTransition(state.Initiated, state.Completed)).To(BeTrue())
			Expect(state.AvailableTransition(state.InProgress, state.UnderReview)).To(BeTrue())
			Expect(state.AvailableTransition(state.UnderReview, state.Done)).To(BeTrue())
		})
		It("should reject backward moves and self moves", func() {
			Expect(state.AvailableTransition(state.Completed, state.InProgress)).To(BeFalse())
			Expect(state.AvailableTransition(state.InProgress, state.InProgress)).To(BeFalse())
			Expect(state.AvailableTransition(state.Done, state.Completed)).To(BeFalse())
		})
		It("should reject unknown statuses on either side", func() {
			Expect(state.AvailableTransition(state.Status("weird_status"), state.Completed)).To(BeFalse())
			Expect(state.AvailableTransition(state.Initiated, state.Status("weird_status"))).To(BeFalse())
		})
	})
})
