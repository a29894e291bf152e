// Package userstore keeps user credentials in a single sqlite table.
package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"
)

type (
	Store struct {
		db *sql.DB
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
	}
)

func openDatabase(ctx context.Context, file string) (*sql.DB, error) {
	if dir := filepath.Dir(file); dir != "." {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return nil, fmt.Errorf("unable to create directory %v to store users, cause %w", dir, err)
		}
	}
	// busy_timeout makes concurrent writers wait for the lock instead of failing right away
	connstr := fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&mode=rwc", file)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open %v, cause %w", file, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping database %v, cause %w", file, err)
	}
	return conn, nil
}

// Open loads the user database from file, creating both the file and
// the users table if they are missing.
func Open(ctx context.Context, file string) (*Store, error) {
	conn, err := openDatabase(ctx, file)
	if err != nil {
		return nil, err
	}
	s := &Store{db: conn}
	err = s.init(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init database %v, cause %w", file, err)
	}
	return s, nil
}

// CreateUser inserts a new user and returns its id. If the username is
// already registered the error is UsernameTaken and nothing is written.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `insert into users(username, password) values (?, ?)`, username, passwordHash)
	if isUniqueViolation(err) {
		return 0, UsernameTaken{Username: username}
	} else if err != nil {
		return 0, fmt.Errorf("unable to create user %v, cause %w", username, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("unable to read id of user %v, cause %w", username, err)
	}
	return id, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select id, username, password from users where username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, UserNotFound{Username: username}
	} else if err != nil {
		return User{}, fmt.Errorf("unable to load user %v, cause %w", username, err)
	}
	return u, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, cmd := range []string{
		`create table if not exists users(
			id integer primary key autoincrement,
			username text not null unique,
			password text not null
		)`,
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var sqlErr sqlite3.Error
	if !errors.As(err, &sqlErr) {
		return false
	}
	return sqlErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
