package indices

import (
	"net/http"

	"stackrent/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	PathIndexRequests    = "/v1/index-requests"
	PathStackSearchsRoot = "/v1/stack-searches"
)

func RegisterIndicesHandlers(r *gin.Engine, ix IndexerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)

	handler := &indicesHandler{indexer: ix}
	g.POST("", handler.handleIndexRequest)

	s := r.Group(PathStackSearchsRoot, middleWares...)
	s.GET("", handler.handleSearchStacks)
}

type indicesHandler struct {
	indexer IndexerTraits
}

func (h *indicesHandler) handleIndexRequest(c *gin.Context) {
	started, err := h.indexer.ScheduleFullSync(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"result": started})
}

func (h *indicesHandler) handleSearchStacks(c *gin.Context) {
	query := StackSearchQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	stacks, err := h.indexer.SearchStacks(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stacks)
}
