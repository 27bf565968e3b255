package stack

import (
	"net/http"

	"stackrent/bizerror"
	"stackrent/domain"
	"stackrent/misc"
	"stackrent/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathStacksRoot    = "/v1/stacks"
	PathSubStacksRoot = "/v1/sub-stacks"
)

func RegisterStacksHandlers(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathStacksRoot, middleWares...)

	handler := &stacksHandler{manager: m}
	g.GET("", handler.handleQuery)
	g.GET(":id", handler.handleDetail)
	g.GET(":id/sub-stacks", handler.handleQuerySubStacks)
	g.POST("", handler.handleCreate)
	g.PUT(":id", handler.handleUpdate)

	s := r.Group(PathSubStacksRoot, middleWares...)
	s.POST("", handler.handleCreateSubStack)
}

type stacksHandler struct {
	manager ManagerTraits
}

func (h *stacksHandler) handleQuery(c *gin.Context) {
	query := domain.StackQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	stacks, err := h.manager.QueryStacks(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: stacks, Total: uint64(len(*stacks))})
}

func (h *stacksHandler) handleDetail(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	stack, err := h.manager.DetailStack(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stack)
}

func (h *stacksHandler) handleQuerySubStacks(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	subStacks, err := h.manager.QuerySubStacks(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, subStacks)
}

func (h *stacksHandler) handleCreate(c *gin.Context) {
	creation := domain.StackCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	stack, err := h.manager.CreateStack(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, stack)
}

func (h *stacksHandler) handleUpdate(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updating := domain.StackUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	stack, err := h.manager.UpdateStack(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stack)
}

func (h *stacksHandler) handleCreateSubStack(c *gin.Context) {
	creation := domain.SubStackCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	subStack, err := h.manager.CreateSubStack(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, subStack)
}
