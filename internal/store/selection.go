package store

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrConstraint marks a write refused by a table constraint, such as deleting a
// location that weather rows still reference.
var ErrConstraint = errors.New("constraint violation")

func isConstraint(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}

// Keywords a selection may use besides column names.
var selectionKeywords = map[string]bool{
	"AND":     true,
	"OR":      true,
	"NOT":     true,
	"IS":      true,
	"NULL":    true,
	"LIKE":    true,
	"IN":      true,
	"BETWEEN": true,
}

// Comparison operators, longest first.
var selectionOperators = []string{"<=", ">=", "<>", "!=", "==", "=", "<", ">"}

// selectionClause checks selection against a small WHERE grammar and returns it
// rebuilt with qualified column names. Only known columns, ? placeholders, numeric
// literals, comparison operators, the keywords above, parentheses and commas are
// accepted; values must be bound through args. The number of placeholders has to
// match len(args).
func selectionClause(selection string, args []interface{}, allowed map[string]string) (string, error) {
	var out []string
	placeholders := 0

	invalid := func(format string, a ...interface{}) (string, error) {
		return "", fmt.Errorf("%w: selection: %s", ErrInvalidQuery, fmt.Sprintf(format, a...))
	}

	for i := 0; i < len(selection); {
		c := selection[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '?':
			out = append(out, "?")
			placeholders++
			i++
		case c == '(' || c == ')' || c == ',':
			out = append(out, string(c))
			i++
		case isDigit(c):
			j, dots := i, 0
			for j < len(selection) && (isDigit(selection[j]) || selection[j] == '.') {
				if selection[j] == '.' {
					dots++
				}
				j++
			}
			if dots > 1 || selection[j-1] == '.' {
				return invalid("bad number %q", selection[i:j])
			}
			out = append(out, selection[i:j])
			i = j
		case isIdentStart(c):
			j := i
			for j < len(selection) && (isIdentStart(selection[j]) || isDigit(selection[j]) || selection[j] == '.') {
				j++
			}
			word := selection[i:j]
			if kw := strings.ToUpper(word); selectionKeywords[kw] {
				out = append(out, kw)
			} else if col, ok := allowed[word]; ok {
				out = append(out, col)
			} else {
				return invalid("unknown name %q", word)
			}
			i = j
		default:
			op := ""
			for _, candidate := range selectionOperators {
				if strings.HasPrefix(selection[i:], candidate) {
					op = candidate
					break
				}
			}
			if op == "" {
				return invalid("unexpected %q", c)
			}
			out = append(out, op)
			i += len(op)
		}
	}

	if placeholders != len(args) {
		return invalid("%d placeholders for %d arguments", placeholders, len(args))
	}
	return strings.Join(out, " "), nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
