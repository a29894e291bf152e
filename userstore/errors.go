package userstore

import "fmt"

type (
	UsernameTaken struct {
		Username string
	}

	UserNotFound struct {
		Username string
	}
)

func (u UsernameTaken) Error() string {
	return fmt.Sprintf("username %v already exists", u.Username)
}

func (u UserNotFound) Error() string {
	return fmt.Sprintf("user %v not found", u.Username)
}
