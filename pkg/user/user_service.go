package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrUserDataInvalid = errors.New("invalid user data")
var ErrForbidden = errors.New("operation not permitted for role")

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id int, role Role) (User, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, current.Id)
}

// CreateUser registers a CMS user. Only administrators may create users,
// except for the very first one, which becomes the administrator.
func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	user.Email = strings.TrimSpace(user.Email)
	user.Name = strings.TrimSpace(user.Name)
	if user.Email == "" || user.Name == "" {
		return User{}, fmt.Errorf("%w: name and email are required", ErrUserDataInvalid)
	}

	if user.Uid == "" {
		user.Uid = uuid.NewString()
	}

	count, err := u.repo.CountUsers(ctx)
	if err != nil {
		return User{}, err
	}
	if count == 0 {
		first := user
		first.Role = RoleAdministrator
		id, err := u.repo.CreateFirstUser(ctx, first)
		if err == nil {
			log.Infof("created first user %s as administrator", first.Email)
			first.Id = id
			return first, nil
		} else if !errors.Is(err, ErrNotFirstUser) {
			return User{}, err
		}
		log.Debugf("lost the first-user race for %s", user.Email)
	}

	if err := requireRole(ctx, RoleAdministrator); err != nil {
		return User{}, err
	}
	if user.Role == "" {
		user.Role = RoleReader
	}
	if !user.Role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrUserDataInvalid, user.Role)
	}

	id, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = id
	return user, nil
}

func (u *UserServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return u.repo.GetUser(ctx, id)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

func (u *UserServiceImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	if err := requireRole(ctx, RoleAdministrator); err != nil {
		return nil, err
	}
	return u.repo.GetAllUsers(ctx)
}

func (u *UserServiceImpl) UpdateRole(ctx context.Context, id int, role Role) (User, error) {
	if err := requireRole(ctx, RoleAdministrator); err != nil {
		return User{}, err
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrUserDataInvalid, role)
	}
	if err := u.repo.UpdateRole(ctx, id, role); err != nil {
		return User{}, err
	}
	return u.repo.GetUser(ctx, id)
}

func requireRole(ctx context.Context, min Role) error {
	current, err := CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if !current.Role.AtLeast(min) {
		return fmt.Errorf("%w: %s", ErrForbidden, current.Role)
	}
	return nil
}
