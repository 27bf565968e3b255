package assignment

import (
	"net/http"

	"stackrent/bizerror"
	"stackrent/misc"
	"stackrent/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathAssignmentsRoot       = "/v1/assignments"
	PathStatusTransitionsRoot = "/v1/order-item-status-transitions"
	PathProgressUpdatesRoot   = "/v1/order-item-progress-updates"
)

func RegisterAssignmentsHandlers(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAssignmentsRoot, middleWares...)

	handler := &assignmentsHandler{manager: m}
	g.GET("", handler.handleQuery)
	g.POST("", handler.handleAssign)
	g.DELETE(":id", handler.handleRevoke)

	t := r.Group(PathStatusTransitionsRoot, middleWares...)
	t.POST("", handler.handleStatusTransition)

	p := r.Group(PathProgressUpdatesRoot, middleWares...)
	p.POST("", handler.handleProgressUpdate)
}

type assignmentsHandler struct {
	manager ManagerTraits
}

func (h *assignmentsHandler) handleAssign(c *gin.Context) {
	creation := AssignmentCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	record, err := h.manager.AssignOrderItem(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func (h *assignmentsHandler) handleRevoke(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := h.manager.RevokeAssignment(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *assignmentsHandler) handleQuery(c *gin.Context) {
	query := AssignmentsQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	records, err := h.manager.QueryAssignments(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func (h *assignmentsHandler) handleStatusTransition(c *gin.Context) {
	transition := StatusTransition{}
	if err := c.ShouldBindBodyWith(&transition, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := h.manager.TransitionOrderItemStatus(&transition, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}

func (h *assignmentsHandler) handleProgressUpdate(c *gin.Context) {
	update := ProgressUpdate{}
	if err := c.ShouldBindBodyWith(&update, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := h.manager.UpdateOrderItemProgress(&update, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
