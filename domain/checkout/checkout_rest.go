package checkout

import (
	"net/http"

	"stackrent/bizerror"
	"stackrent/misc"
	"stackrent/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathCartsRoot  = "/v1/carts"
	PathOrdersRoot = "/v1/orders"
)

func RegisterCheckoutHandlers(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathCartsRoot, middleWares...)

	handler := &checkoutHandler{manager: m}
	g.GET("", handler.handleQueryCart)
	g.POST("", handler.handleAddToCart)
	g.DELETE(":id", handler.handleRemoveFromCart)

	o := r.Group(PathOrdersRoot, middleWares...)
	o.POST("", handler.handleCheckout)
}

type checkoutHandler struct {
	manager ManagerTraits
}

func (h *checkoutHandler) handleAddToCart(c *gin.Context) {
	creation := CartStackCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	cartStack, err := h.manager.AddToCart(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, cartStack)
}

func (h *checkoutHandler) handleQueryCart(c *gin.Context) {
	cartStacks, err := h.manager.QueryCart(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &misc.PagedBody{List: cartStacks, Total: uint64(len(*cartStacks))})
}

func (h *checkoutHandler) handleRemoveFromCart(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err := h.manager.RemoveFromCart(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *checkoutHandler) handleCheckout(c *gin.Context) {
	request := CheckoutRequest{}
	if err := c.ShouldBindBodyWith(&request, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := h.manager.Checkout(&request, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}
