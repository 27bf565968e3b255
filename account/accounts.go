package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"strings"

	"stackrent/authority"
	"stackrent/idgen"
	"stackrent/persistence"
	"stackrent/session"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

type Manager struct {
	ds       *persistence.DataSourceManager
	idWorker *sonyflake.Sonyflake
}

func NewManager(ds *persistence.DataSourceManager) *Manager {
	return &Manager{ds: ds, idWorker: sonyflake.NewSonyflake(sonyflake.Settings{})}
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	return hex.EncodeToString(h.Sum(nil))
}

func HashWithSalt(salt, raw string) string {
	return HashSha256(salt + raw)
}

func NewSalt() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// AuthenticateAdmin verifies both factors of an admin login. Every mismatch
// (unknown name, inactive user, wrong password, wrong secret key) returns the
// same nil result so callers cannot tell which factor failed.
func (m *Manager) AuthenticateAdmin(name, password, secretKey string) (*session.Identity, authority.Permissions, error) {
	user := User{}
	err := m.ds.GormDB(nil).Where(&User{Name: name, Active: true}).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	if user.Secret != HashWithSalt(user.Salt, password) || user.SecretKey != HashWithSalt(user.Salt, secretKey) {
		return nil, nil, nil
	}

	identity := session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname}
	return &identity, authority.Permissions{SystemAdminPermission.ID}, nil
}

// LoadSessionUser resolves a persisted session's user. A missing or
// deactivated user resolves to nil without error.
func (m *Manager) LoadSessionUser(userID types.ID) (*session.Identity, authority.Permissions, error) {
	user := User{ID: userID}
	err := m.ds.GormDB(nil).Where(&user).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, nil
	}
	identity := session.Identity{ID: user.ID, Name: user.Name, Nickname: user.Nickname}
	return &identity, authority.Permissions{SystemAdminPermission.ID}, nil
}

// EnsureDefaultAdmin seeds the initial admin account on an empty users table.
// ADMIN_NAME / ADMIN_PASSWORD / ADMIN_SECRET_KEY configure the credentials.
func (m *Manager) EnsureDefaultAdmin() error {
	name := os.Getenv("ADMIN_NAME")
	if name == "" {
		name = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	secretKey := os.Getenv("ADMIN_SECRET_KEY")
	if password == "" || secretKey == "" {
		return errors.New("ADMIN_PASSWORD and ADMIN_SECRET_KEY must be set")
	}

	return m.ds.GormDB(nil).Transaction(func(tx *gorm.DB) error {
		var count int
		if err := tx.Model(&User{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		salt := NewSalt()
		user := User{
			ID: idgen.NextID(m.idWorker), Name: name, Nickname: "Administrator",
			Secret: HashWithSalt(salt, password), SecretKey: HashWithSalt(salt, secretKey),
			Salt: salt, Active: true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		logrus.Infof("default admin account %s created", name)
		return nil
	})
}
