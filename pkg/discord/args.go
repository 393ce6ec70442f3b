package discord

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// UsageError reports that a command was invoked with invalid arguments.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// Usagef builds a UsageError.
func Usagef(format string, args ...interface{}) *UsageError {
	return &UsageError{Reason: fmt.Sprintf(format, args...)}
}

// ErrUnterminatedQuote is returned by SplitArgs for a quote that is never closed.
var ErrUnterminatedQuote = errors.New("comillas sin cerrar")

// SplitArgs splits raw on whitespace. Double or single quotes group words,
// and a backslash escapes the next character.
func SplitArgs(raw string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
		escaped bool
	)

	for _, r := range raw {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
			inArg = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case unicode.IsSpace(r):
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}

	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if escaped {
		current.WriteRune('\\')
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}

// Typed parses the raw arguments into T before running the handler. A
// UsageError from parse is answered with the command usage and not treated
// as a failure.
func Typed[T any](parse func(raw string) (T, error), run func(ctx *MessageContext, args T) error) PrefixRunFunc {
	return func(ctx *MessageContext) error {
		args, err := parse(ctx.Args)
		if err != nil {
			var usage *UsageError
			if errors.As(err, &usage) {
				return ctx.ReplyUsage(usage)
			}
			return err
		}
		return run(ctx, args)
	}
}
