package database

import (
	"fmt"
	"regexp"
	"strings"
)

const maxIdentifierLength = 128

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Зарезервированные слова SQLite, которые нельзя использовать как имена
// таблиц или колонок даже в кавычках — чтобы не маскировать ошибки схемы.
var reservedWords = map[string]struct{}{
	"add": {}, "all": {}, "alter": {}, "and": {}, "as": {}, "autoincrement": {},
	"between": {}, "case": {}, "check": {}, "collate": {}, "commit": {},
	"constraint": {}, "create": {}, "default": {}, "deferrable": {}, "delete": {},
	"distinct": {}, "drop": {}, "else": {}, "escape": {}, "except": {},
	"exists": {}, "foreign": {}, "from": {}, "group": {}, "having": {},
	"in": {}, "index": {}, "insert": {}, "intersect": {}, "into": {}, "is": {},
	"isnull": {}, "join": {}, "limit": {}, "not": {}, "notnull": {}, "null": {},
	"on": {}, "or": {}, "order": {}, "primary": {}, "references": {},
	"select": {}, "set": {}, "table": {}, "then": {}, "to": {}, "transaction": {},
	"union": {}, "unique": {}, "update": {}, "using": {}, "values": {},
	"when": {}, "where": {},
}

// ValidateIdentifier validates a table or column name against the allow-list
// and returns it quoted for safe interpolation into statement text. It is
// never applied to values — those are always bound parameters.
//
// An already-quoted identifier is rejected rather than double-quoted.
func ValidateIdentifier(identifier string) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("%w: identifier cannot be empty", ErrInvalidIdentifier)
	}
	if strings.Contains(identifier, `"`) {
		return "", fmt.Errorf("%w: %q is already quoted", ErrInvalidIdentifier, identifier)
	}
	if len(identifier) > maxIdentifierLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidIdentifier, identifier, maxIdentifierLength)
	}
	if !identifierPattern.MatchString(identifier) {
		return "", fmt.Errorf("%w: %q must contain only alphanumeric characters and underscores", ErrInvalidIdentifier, identifier)
	}
	if _, ok := reservedWords[strings.ToLower(identifier)]; ok {
		return "", fmt.Errorf("%w: %q is a reserved word", ErrInvalidIdentifier, identifier)
	}

	return `"` + identifier + `"`, nil
}
