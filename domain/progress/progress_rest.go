package progress

import (
	"net/http"

	"stackrent/bizerror"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

const PathOrderProgressRoot = "/v1/order-progress"

func RegisterProgressHandlers(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrderProgressRoot, middleWares...)

	handler := &progressHandler{manager: m}
	g.GET("", handler.handleQuery)
}

type progressHandler struct {
	manager ManagerTraits
}

func (h *progressHandler) handleQuery(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)

	userID := sec.Identity.ID
	if raw := c.Query("userId"); raw != "" {
		parsed, err := types.ParseID(raw)
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		userID = parsed
	}

	results, err := h.manager.QueryUserProgress(userID, sec)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}
