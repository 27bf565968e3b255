package avatar

import (
	"net/http"

	"stackrent/bizerror"
	"stackrent/misc"
	"stackrent/session"

	"github.com/gin-gonic/gin"
)

const PathEmployeeAvatarsRoot = "/v1/employee-avatars"

func RegisterAvatarsHandlers(r *gin.Engine, m ManagerTraits, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathEmployeeAvatarsRoot, middleWares...)

	handler := &avatarsHandler{manager: m}
	g.GET(":id", handler.handleDetail)
	g.POST(":id", handler.handleCreate)
}

type avatarsHandler struct {
	manager ManagerTraits
}

func (h *avatarsHandler) handleDetail(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	bytes, err := h.manager.DetailEmployeeAvatar(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.Data(http.StatusOK, "image/png", bytes)
}

func (h *avatarsHandler) handleCreate(c *gin.Context) {
	id, err := misc.BindingPathID(c)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	file, err := c.FormFile("file")
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	src, err := file.Open()
	if err != nil {
		panic(err)
	}
	defer src.Close()

	if err := h.manager.CreateEmployeeAvatar(id, src, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{})
}
