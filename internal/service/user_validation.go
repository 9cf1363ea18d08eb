package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"noteful-api/internal/domain"
)

const (
	fieldUsername = "username"
	fieldPassword = "password"
	fieldFullname = "fullname"

	passwordMinLen = 8
	passwordMaxLen = 72

	// bcrypt ignora lo que pase de 72 bytes; un password multibyte puede
	// tener menos de 72 caracteres y aun asi excederlo.
	passwordMaxBytes = 72
)

// ValidationError describe el primer campo que no paso las reglas de registro.
type ValidationError struct {
	Message  string
	Location string
	cause    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Location, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func newDuplicateUsernameError() *ValidationError {
	return &ValidationError{
		Message:  "Username already exists",
		Location: fieldUsername,
		cause:    domain.ErrDuplicateUsername,
	}
}

// RegistrationInput son los campos crudos del body, para poder distinguir
// ausencia y tipo JSON de cada uno.
type RegistrationInput map[string]json.RawMessage

// fieldRule es una regla pura sobre un campo; devuelve el mensaje de error o "".
type fieldRule struct {
	field string
	check func(raw json.RawMessage, present bool) string
}

// registrationRules se evalua en orden y corta en la primera falla:
// presencia, tipo, trim, minimos y luego maximos.
var registrationRules = []fieldRule{
	{fieldUsername, required(fieldUsername)},
	{fieldPassword, required(fieldPassword)},
	{fieldUsername, isString},
	{fieldPassword, isString},
	{fieldFullname, isString},
	{fieldUsername, trimmed},
	{fieldPassword, trimmed},
	{fieldUsername, minLength(1)},
	{fieldPassword, minLength(passwordMinLen)},
	{fieldPassword, maxLength(passwordMaxLen)},
	{fieldPassword, maxBytes(passwordMaxBytes)},
}

func validateRegistration(input RegistrationInput) *ValidationError {
	for _, rule := range registrationRules {
		raw, present := input[rule.field]
		if msg := rule.check(raw, present); msg != "" {
			return &ValidationError{Message: msg, Location: rule.field}
		}
	}
	return nil
}

func required(field string) func(json.RawMessage, bool) string {
	return func(_ json.RawMessage, present bool) string {
		if !present {
			return fmt.Sprintf("Missing '%s' in request body", field)
		}
		return ""
	}
}

func isString(raw json.RawMessage, present bool) string {
	if !present {
		return ""
	}
	if _, ok := decodeString(raw); !ok {
		return "Incorrect field type: expected string"
	}
	return ""
}

func trimmed(raw json.RawMessage, _ bool) string {
	s, _ := decodeString(raw)
	if trimSpace(s) != s {
		return "Cannot start or end with whitespace"
	}
	return ""
}

func minLength(n int) func(json.RawMessage, bool) string {
	return func(raw json.RawMessage, _ bool) string {
		s, _ := decodeString(raw)
		if utf8.RuneCountInString(trimSpace(s)) < n {
			return fmt.Sprintf("Must be at least %d characters long", n)
		}
		return ""
	}
}

func maxLength(n int) func(json.RawMessage, bool) string {
	return func(raw json.RawMessage, _ bool) string {
		s, _ := decodeString(raw)
		if utf8.RuneCountInString(trimSpace(s)) > n {
			return fmt.Sprintf("Must be at most %d characters long", n)
		}
		return ""
	}
}

func maxBytes(n int) func(json.RawMessage, bool) string {
	return func(raw json.RawMessage, _ bool) string {
		s, _ := decodeString(raw)
		if len(s) > n {
			return fmt.Sprintf("Must be at most %d bytes long", n)
		}
		return ""
	}
}

// trimSpace recorta como String.prototype.trim: espacios Unicode y BOM.
func trimSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// decodeString acepta solo strings JSON; null, numeros u objetos no cuentan.
func decodeString(raw json.RawMessage) (string, bool) {
	trimmedRaw := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmedRaw, `"`) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
