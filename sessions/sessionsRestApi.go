package sessions

import (
	"net/http"
	"time"

	"stackrent/account"
	"stackrent/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	PathAdminSessions = "/admin/sessions"
	PathAdminLogin    = "/admin/login"
	PathAdminHome     = "/admin"
)

// redirect error codes consumed by the login page
const (
	ErrorCodeMissingFields      = "missing_fields"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeSessionError       = "session_error"
)

type sessionsHandler struct {
	accounts account.ManagerTraits
	sessions session.ManagerTraits
	limiter  *loginLimiter
}

func RegisterSessionsHandlers(r *gin.Engine, accounts account.ManagerTraits, sessions session.ManagerTraits) {
	handler := &sessionsHandler{
		accounts: accounts,
		sessions: sessions,
		limiter:  newLoginLimiter(rate.Every(time.Second), 5),
	}

	r.GET(PathAdminLogin, handler.handleLoginPage)
	r.POST(PathAdminSessions, handler.handleLogin)
	r.DELETE(PathAdminSessions, handler.handleLogout)
}

// RegisterAdminHomeHandler serves the landing page the login flow redirects
// to. It sits behind the auth filter and echoes the signed-in identity.
func RegisterAdminHomeHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAdminHome, middleWares...)
	g.GET("", func(c *gin.Context) {
		s := session.ExtractSessionFromGinContext(c)
		c.JSON(http.StatusOK, gin.H{"identity": s.Identity, "perms": s.Perms})
	})
}

func (h *sessionsHandler) handleLoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"error": c.Query("error")})
}

// handleLogin verifies password and secret key against salted hashes and
// issues the session cookie. Failures are reported only as redirect error
// codes; which factor failed is never surfaced.
func (h *sessionsHandler) handleLogin(c *gin.Context) {
	login := session.LoginRequest{}
	_ = c.ShouldBind(&login)
	if login.Name == "" || login.Password == "" || login.SecretKey == "" {
		redirectLoginError(c, ErrorCodeMissingFields)
		return
	}

	if !h.limiter.Allow(c.ClientIP()) {
		redirectLoginError(c, ErrorCodeInvalidCredentials)
		return
	}

	identity, perms, err := h.accounts.AuthenticateAdmin(login.Name, login.Password, login.SecretKey)
	if err != nil {
		logrus.Errorf("admin login failed: %v", err)
		redirectLoginError(c, ErrorCodeInvalidCredentials)
		return
	}
	if identity == nil {
		redirectLoginError(c, ErrorCodeInvalidCredentials)
		return
	}

	s, err := h.sessions.StartSession(*identity, perms)
	if err != nil {
		logrus.Errorf("admin session persist failed: %v", err)
		redirectLoginError(c, ErrorCodeSessionError)
		return
	}

	setSessionCookie(c, s.Token, int(session.TokenExpiration/time.Second))
	c.Redirect(http.StatusSeeOther, PathAdminHome)
}

func (h *sessionsHandler) handleLogout(c *gin.Context) {
	token, _ := c.Cookie(session.KeySecToken) // ErrNoCookie
	if token != "" {
		if err := h.sessions.CloseSession(token); err != nil {
			logrus.Errorf("admin session close failed: %v", err)
		}
	}
	setSessionCookie(c, "", -1)
	c.Redirect(http.StatusSeeOther, PathAdminLogin)
}

func redirectLoginError(c *gin.Context, code string) {
	c.Redirect(http.StatusSeeOther, PathAdminLogin+"?error="+code)
}

func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.KeySecToken, token, maxAge, "/", "", gin.Mode() == gin.ReleaseMode, true)
}
