package testinfra

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// ExecuteRequest runs one request through the router and drains the response.
func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, http.Header) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()
	bodyBytes, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		panic(err)
	}
	return resp.StatusCode, string(bodyBytes), resp.Header
}

// BuildSecCtx builds a session for service-level tests.
func BuildSecCtx(uid types.ID, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: uid, Name: "test-user"},
		Perms:    perms,
		Context:  context.Background(),
	}
}

// SessionFilter injects a fixed session, standing in for the auth filter.
func SessionFilter(s *session.Session) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session.InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}
