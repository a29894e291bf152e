package credentials

import "fmt"

type (
	MissingField struct {
		Name string
	}

	PasswordTooLong struct {
		Max int
	}

	InvalidPassword struct {
		Username string
	}
)

func (m MissingField) Error() string {
	return fmt.Sprintf("field %v is required", m.Name)
}

func (p PasswordTooLong) Error() string {
	return fmt.Sprintf("password cannot be longer than %v bytes", p.Max)
}

func (i InvalidPassword) Error() string {
	return fmt.Sprintf("invalid password for user %v", i.Username)
}
