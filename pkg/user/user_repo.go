package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrNotFirstUser = errors.New("users already exist")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	// CreateFirstUser inserts user only while no user exists and returns
	// ErrNotFirstUser otherwise.
	CreateFirstUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	CountUsers(ctx context.Context) (int, error)
	UpdateRole(ctx context.Context, id int, role Role) error
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

const uniqueViolation = "23505"

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO cms_user (uid, name, email, role) VALUES ($1, $2, $3, $4) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query, user.Uid, user.Name, user.Email, user.Role).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, user.Email)
		}
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) CreateFirstUser(ctx context.Context, user User) (int, error) {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// concurrent bootstraps queue on the lock and then see the first insert
	if _, err := tx.Exec(ctx, `LOCK TABLE cms_user IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		log.Errorf("failed to lock users: %v", err)
		return 0, err
	}
	query := `INSERT INTO cms_user (uid, name, email, role)
				SELECT $1, $2, $3, $4 WHERE NOT EXISTS (SELECT 1 FROM cms_user)
				RETURNING id`
	var id int
	err = tx.QueryRow(ctx, query, user.Uid, user.Name, user.Email, user.Role).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFirstUser
	} else if err != nil {
		log.Errorf("failed to create first user: %v", err)
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit first user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, uid, name, email, role FROM cms_user WHERE id = $1`
	return u.scanOne(ctx, query, id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, name, email, role FROM cms_user WHERE uid = $1`
	return u.scanOne(ctx, query, uid)
}

func (u *UserRepoImpl) scanOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	err := u.db.QueryRow(ctx, query, arg).Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &user.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user %v not found", arg)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *UserRepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, uid, name, email, role FROM cms_user ORDER BY id`
	rows, err := u.db.Query(ctx, query)
	if err != nil {
		log.Errorf("failed to get users: %v", err)
		return nil, err
	}
	defer rows.Close()
	users := make([]User, 0, 10)
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.Id, &user.Uid, &user.Name, &user.Email, &user.Role); err != nil {
			log.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return users, nil
}

func (u *UserRepoImpl) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := u.db.QueryRow(ctx, `SELECT COUNT(*) FROM cms_user`).Scan(&count); err != nil {
		log.Errorf("failed to count users: %v", err)
		return 0, err
	}
	return count, nil
}

func (u *UserRepoImpl) UpdateRole(ctx context.Context, id int, role Role) error {
	result, err := u.db.Exec(ctx, `UPDATE cms_user SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		log.Errorf("failed to update role of user %d: %v", id, err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
