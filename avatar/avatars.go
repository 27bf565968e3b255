package avatar

import (
	"io"
	"io/ioutil"

	"stackrent/account"
	"stackrent/bizerror"
	"stackrent/client/s3"
	"stackrent/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
)

type ManagerTraits interface {
	DetailEmployeeAvatar(id types.ID, sec *session.Session) ([]byte, error)
	CreateEmployeeAvatar(id types.ID, r io.Reader, sec *session.Session) error
}

type Manager struct {
	objects s3.ObjectStoreTraits
}

func NewManager(objects s3.ObjectStoreTraits) *Manager {
	return &Manager{objects: objects}
}

func (m *Manager) DetailEmployeeAvatar(id types.ID, sec *session.Session) ([]byte, error) {
	r, err := m.objects.GetObject(sec.Context, avatarKey(id))
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

func (m *Manager) CreateEmployeeAvatar(id types.ID, r io.Reader, sec *session.Session) error {
	if !sec.Perms.HasRole(account.SystemAdminPermission.ID) {
		return bizerror.ErrForbidden
	}
	return m.objects.PutObject(sec.Context, avatarKey(id), r)
}

func avatarKey(id types.ID) string {
	return "avatars/" + id.String() + ".png"
}
