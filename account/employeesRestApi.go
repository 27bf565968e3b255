package account

import (
	"net/http"

	"stackrent/bizerror"
	"stackrent/misc"
	"stackrent/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathEmployeesRoot = "/v1/employees"

func RegisterEmployeesHandlers(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEmployeesRoot, middleWares...)

	handler := &employeesHandler{manager: m}
	g.GET("", handler.handleQuery)
	g.POST("", handler.handleCreate)
	g.DELETE(":id", handler.handleDeactivate)
}

type employeesHandler struct {
	manager ManagerTraits
}

func (h *employeesHandler) handleCreate(c *gin.Context) {
	creation := EmployeeCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	employee, err := h.manager.CreateEmployee(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, employee)
}

func (h *employeesHandler) handleQuery(c *gin.Context) {
	query := EmployeeQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	employees, err := h.manager.QueryEmployees(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: employees, Total: uint64(len(*employees))})
}

func (h *employeesHandler) handleDeactivate(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := h.manager.DeactivateEmployee(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
