package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidateOptionality reconciles the three independent optionality
// signals of a property or parameter. Exactly four combinations are
// accepted:
//
//	required, no default, not nullable  -> plain required field
//	optional with default               -> field with provider
//	optional, nullable                  -> Option field
//	optional, nullable, with default    -> Option field with provider
//
// Everything else is contradictory or ambiguous and rejected.
func ValidateOptionality(required, hasDefault, nullable bool) error {
	switch {
	case required && hasDefault:
		return newError(OptionalityError, "property is required but has a default value")
	case required && nullable:
		return newError(OptionalityError, "property is required but nullable")
	case required:
		return nil
	case hasDefault:
		return nil
	case nullable:
		return nil
	default:
		return newError(OptionalityError, "property is not required, has no default and is not nullable; mark it required, nullable, or give it a default")
	}
}

// defaultProvider synthesizes the DefaultProvider definition for a
// literal default value against its target type, returning the assigned
// definition name. The name encodes the literal's kind and value so
// identical defaults collapse naturally in the store.
func defaultProvider(store *Store, version int, target *InlineType, value interface{}) (string, error) {
	scalar := target
	optional := false
	if scalar.Kind == KindOption {
		scalar = scalar.Inner
		optional = true
	}

	name, expr, err := defaultLiteral(scalar, value)
	if err != nil {
		return "", err
	}
	if optional {
		name = "opt_" + name
		expr = "Some(" + expr + ")"
	}

	return store.Push(name, version, &DefaultProvider{Type: target, Value: expr})
}

// defaultLiteral lowers a scalar literal to its generated name and value
// expression. Composite (array/object) literals are rejected rather than
// left unreachable.
func defaultLiteral(scalar *InlineType, value interface{}) (string, string, error) {
	switch scalar.Kind {
	case KindBoolean:
		b, ok := value.(bool)
		if !ok {
			return "", "", newError(UnsupportedError, fmt.Sprintf("default value %v is not a boolean", value))
		}
		if b {
			return "default_true", "true", nil
		}
		return "default_false", "false", nil
	case KindInteger:
		i, ok := asInt(value)
		if !ok {
			return "", "", newError(UnsupportedError, fmt.Sprintf("default value %v is not an integer", value))
		}
		text := strconv.FormatInt(i, 10)
		return "default_int_" + strings.ReplaceAll(text, "-", "neg_"), text, nil
	case KindFloat:
		f, ok := asFloat(value)
		if !ok {
			return "", "", newError(UnsupportedError, fmt.Sprintf("default value %v is not a number", value))
		}
		text := strconv.FormatFloat(f, 'f', -1, 64)
		name := strings.ReplaceAll(text, ".", "_")
		name = strings.ReplaceAll(name, "-", "neg_")
		return "default_float_" + name, text, nil
	case KindString:
		s, ok := value.(string)
		if !ok {
			return "", "", newError(UnsupportedError, fmt.Sprintf("default value %v is not a string", value))
		}
		name := "default_str_" + RustIdentifier(s, CaseSnake)
		return name, strconv.Quote(s) + ".to_string()", nil
	default:
		switch value.(type) {
		case []interface{}, map[string]interface{}:
			return "", "", newError(UnsupportedError, "array and object default values are not supported")
		}
		return "", "", newError(UnsupportedError, fmt.Sprintf("default values are not supported for %s", scalar))
	}
}

func asInt(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	}
	return 0, false
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}
