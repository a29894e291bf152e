// Package credentials registers users and checks their passwords.
//
// Passwords go through bcrypt before they reach the store, the plain text
// is never written anywhere. Login compares the candidate password with
// the stored hash using bcrypt itself, and only then asks the session
// issuer for a token.
//
// Errors are values that callers can match with errors.As/errors.Is:
// MissingField and PasswordTooLong for bad input, userstore.UsernameTaken
// for duplicate registrations, userstore.UserNotFound for unknown users
// and InvalidPassword for a failed comparison. Anything else is an
// internal failure.
package credentials
