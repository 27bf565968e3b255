package session

import (
	"errors"
	"strings"
	"time"

	"stackrent/authority"
	"stackrent/bizerror"
	"stackrent/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/patrickmn/go-cache"
)

const TokenExpiration = 7 * 24 * time.Hour

const KeySecCtx = "SecCtx"
const KeySecToken = "admin_session_token"

type ManagerTraits interface {
	StartSession(identity Identity, perms authority.Permissions) (*Session, error)
	FindSession(token string) (*Session, error)
	CloseSession(token string) error
}

type Manager struct {
	ds         *persistence.DataSourceManager
	tokenCache *cache.Cache

	// LoadUserFunc resolves the session user from persistent state. A nil
	// identity without error means the user is gone or deactivated.
	LoadUserFunc func(userID types.ID) (*Identity, authority.Permissions, error)
}

func NewManager(ds *persistence.DataSourceManager) *Manager {
	return &Manager{
		ds:         ds,
		tokenCache: cache.New(TokenExpiration, 1*time.Minute),
	}
}

// NewToken mints an opaque session token of 256 random bits.
func NewToken() string {
	return strings.ReplaceAll(uuid.New().String()+uuid.New().String(), "-", "")
}

func (m *Manager) StartSession(identity Identity, perms authority.Permissions) (*Session, error) {
	now := time.Now()
	record := Record{
		Token:      NewToken(),
		UserID:     identity.ID,
		CreateTime: types.Timestamp(now),
		ExpireTime: types.Timestamp(now.Add(TokenExpiration)),
	}
	if err := m.ds.GormDB(nil).Create(&record).Error; err != nil {
		return nil, err
	}

	s := &Session{Token: record.Token, Identity: identity, Perms: perms, ExpireTime: now.Add(TokenExpiration)}
	m.tokenCache.Set(record.Token, s, cache.DefaultExpiration)
	return s, nil
}

// FindSession resolves a token to a session. An unknown, expired or orphaned
// token yields (nil, nil); only backend failures yield an error. Expired rows
// are deleted when seen.
func (m *Manager) FindSession(token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	if value, found := m.tokenCache.Get(token); found {
		if s, ok := value.(*Session); ok && time.Now().Before(s.ExpireTime) {
			c := s.Clone()
			return &c, nil
		}
		m.tokenCache.Delete(token)
	}

	db := m.ds.GormDB(nil)
	record := Record{Token: token}
	if err := db.Where(&record).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !time.Now().Before(record.ExpireTime.Time()) {
		if err := db.Delete(&Record{Token: token}).Error; err != nil {
			return nil, err
		}
		return nil, nil
	}

	identity, perms, err := m.LoadUserFunc(record.UserID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, nil
	}

	s := &Session{Token: token, Identity: *identity, Perms: perms, ExpireTime: record.ExpireTime.Time()}
	m.tokenCache.Set(token, s, record.ExpireTime.Time().Sub(time.Now()))
	c := s.Clone()
	return &c, nil
}

func (m *Manager) CloseSession(token string) error {
	m.tokenCache.Delete(token)
	return m.ds.GormDB(nil).Delete(&Record{Token: token}).Error
}

// AuthFilter gates a route group on a valid admin session cookie.
func (m *Manager) AuthFilter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(KeySecToken)
		if err != nil {
			panic(bizerror.ErrUnauthenticated)
		}
		s, err := m.FindSession(token)
		if err != nil {
			panic(err)
		}
		if s == nil {
			panic(bizerror.ErrUnauthenticated)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context()
	return &s
}

func InjectSessionIntoGinContext(ctx *gin.Context, s *Session) {
	if s != nil && s.Token != "" {
		ctx.Set(KeySecCtx, s)
	}
}
