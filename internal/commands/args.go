package commands

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	apperrors "justtrades-bot/internal/errors"
)

// Args holds parsed, typed argument values keyed by param name.
type Args struct {
	values map[string]interface{}
}

// Has reports whether name was supplied or defaulted.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// String returns a string argument, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Decimal returns a float argument, or zero when absent.
func (a Args) Decimal(name string) decimal.Decimal {
	d, _ := a.values[name].(decimal.Decimal)
	return d
}

// Int returns an int argument, or zero when absent.
func (a Args) Int(name string) int {
	n, _ := a.values[name].(int)
	return n
}

// Tokenize splits prefix-command text on whitespace, keeping double-quoted
// runs together so multi-word values can be passed positionally.
func Tokenize(s string) []string {
	var (
		tokens  []string
		current strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		started = false
	}

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}
	flush()
	return tokens
}

// ParsePrefix binds positional tokens to cmd's params. Required params that
// are missing or fail to convert are usage errors. An optional typed param
// that fails to convert is left unset and its token passes to the next
// param; with no later param it is a usage error too.
func ParsePrefix(cmd *Command, tokens []string) (Args, error) {
	args := Args{values: make(map[string]interface{}, len(cmd.Params))}
	i := 0
	for idx, p := range cmd.Params {
		if p.Rest {
			rest := strings.TrimSpace(strings.Join(tokens[min(i, len(tokens)):], " "))
			i = len(tokens)
			if rest == "" {
				if p.Required {
					return Args{}, usageError(cmd, fmt.Sprintf("missing %s", p.Name))
				}
				setDefault(args, p)
				continue
			}
			args.values[p.Name] = rest
			continue
		}

		if i >= len(tokens) {
			if p.Required {
				return Args{}, usageError(cmd, fmt.Sprintf("missing %s", p.Name))
			}
			setDefault(args, p)
			continue
		}

		v, err := convert(p, tokens[i])
		if err != nil {
			if p.Required || idx == len(cmd.Params)-1 {
				return Args{}, usageError(cmd, err.Error())
			}
			setDefault(args, p)
			continue
		}
		args.values[p.Name] = v
		i++
	}
	return args, nil
}

// ParseOptions binds named slash-command options to cmd's params. Values may
// arrive as strings or as the numeric types the chat platform decodes.
func ParseOptions(cmd *Command, options map[string]interface{}) (Args, error) {
	args := Args{values: make(map[string]interface{}, len(cmd.Params))}
	for _, p := range cmd.Params {
		raw, ok := options[p.Name]
		if !ok || raw == nil {
			if p.Required {
				return Args{}, usageError(cmd, fmt.Sprintf("missing %s", p.Name))
			}
			setDefault(args, p)
			continue
		}

		v, err := convertValue(p, raw)
		if err != nil {
			return Args{}, usageError(cmd, err.Error())
		}
		if s, isStr := v.(string); isStr && s == "" {
			if p.Required {
				return Args{}, usageError(cmd, fmt.Sprintf("missing %s", p.Name))
			}
			setDefault(args, p)
			continue
		}
		args.values[p.Name] = v
	}
	return args, nil
}

func setDefault(args Args, p Param) {
	if p.Default != nil {
		args.values[p.Name] = p.Default
	}
}

func convert(p Param, token string) (interface{}, error) {
	token = strings.TrimSpace(token)
	switch p.Type {
	case TypeFloat:
		d, err := decimal.NewFromString(strings.ReplaceAll(token, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("%s must be a number, got %q", p.Name, token)
		}
		return d, nil
	case TypeInt:
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number, got %q", p.Name, token)
		}
		return n, nil
	default:
		return token, nil
	}
}

func convertValue(p Param, raw interface{}) (interface{}, error) {
	switch v := raw.(type) {
	case string:
		return convert(p, v)
	case float64:
		switch p.Type {
		case TypeFloat:
			return decimal.NewFromFloat(v), nil
		case TypeInt:
			if v != float64(int(v)) {
				return nil, fmt.Errorf("%s must be a whole number, got %v", p.Name, v)
			}
			return int(v), nil
		default:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		}
	case int64:
		return convertValue(p, float64(v))
	case int:
		return convertValue(p, float64(v))
	default:
		return convert(p, fmt.Sprint(v))
	}
}

func usageError(cmd *Command, reason string) error {
	return apperrors.NewUsageError(cmd.Name, cmd.UsageLine(StylePrefix, "!"), reason)
}
