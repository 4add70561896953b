package structured

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseError represents a validation error with its field path.
type ParseError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors struct {
	Errors []ParseError `json:"errors"`
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Parse extracts the JSON instance from raw model text, validates it
// against the schema, and returns a mapping keyed by the schema's field
// names with values coerced to the declared types. The top-level schema
// must be an object. Parsing fails closed: a missing required field or
// an uncoercible value yields a *ValidationErrors and no partial result.
func Parse(raw string, s *Schema) (map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("schema is nil")
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if s.Type != TypeObject {
		return nil, fmt.Errorf("top-level schema must be an object, got %q", s.Type)
	}

	payload := extractJSON(raw)
	if payload == "" {
		return nil, &ValidationErrors{Errors: []ParseError{{Message: "no JSON instance found in response"}}}
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, &ValidationErrors{Errors: []ParseError{{Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}

	var errs []ParseError
	coerced := coerceValue(value, s, "", &errs)
	if len(errs) > 0 {
		return nil, &ValidationErrors{Errors: errs}
	}

	result, ok := coerced.(map[string]any)
	if !ok {
		return nil, &ValidationErrors{Errors: []ParseError{{Message: fmt.Sprintf("expected JSON object, got %T", value)}}}
	}
	return result, nil
}

// extractJSON locates the JSON instance inside raw model output. It
// prefers a fenced code block, then falls back to the first balanced
// object or array literal.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	// Fenced block, ```json or bare ```. The language tag may sit on
	// its own line or share the fence line with the payload.
	if idx := strings.Index(raw, "```"); idx >= 0 {
		rest := strings.TrimPrefix(raw[idx+3:], "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			candidate := strings.TrimSpace(rest[:end])
			if candidate != "" && (candidate[0] == '{' || candidate[0] == '[') {
				return candidate
			}
		}
	}

	// First balanced {...} or [...] literal.
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return ""
	}
	open := raw[start]
	close := byte('}')
	if open == '[' {
		close = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return raw[start : i+1]
			}
		}
	}
	return ""
}

// coerceValue validates value against the schema at path, appending any
// errors, and returns the coerced value. Returned types: string, int64,
// float64, bool, map[string]any, []any.
func coerceValue(value any, s *Schema, path string, errs *[]ParseError) any {
	switch s.Type {
	case TypeString:
		str, ok := value.(string)
		if !ok {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected string, got %s", jsonTypeName(value))})
			return nil
		}
		return str

	case TypeInteger:
		return coerceInteger(value, path, errs)

	case TypeNumber:
		return coerceNumber(value, path, errs)

	case TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected boolean, got %s", jsonTypeName(value))})
			return nil
		}
		return b

	case TypeObject:
		obj, ok := value.(map[string]any)
		if !ok {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected object, got %s", jsonTypeName(value))})
			return nil
		}
		result := make(map[string]any, len(s.Fields))
		for _, f := range s.Fields {
			fieldPath := joinPath(path, f.Name)
			raw, present := obj[f.Name]
			if !present {
				if !f.Optional {
					*errs = append(*errs, ParseError{Path: fieldPath, Message: "required field is missing"})
				}
				continue
			}
			result[f.Name] = coerceValue(raw, f.Schema, fieldPath, errs)
		}
		return result

	case TypeArray:
		arr, ok := value.([]any)
		if !ok {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected array, got %s", jsonTypeName(value))})
			return nil
		}
		result := make([]any, len(arr))
		for i, item := range arr {
			result[i] = coerceValue(item, s.Items, fmt.Sprintf("%s[%d]", path, i), errs)
		}
		return result
	}

	*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("unsupported schema type %q", s.Type)})
	return nil
}

// coerceInteger accepts JSON numbers with integral value and numeric
// strings that round-trip exactly. A fractional value is rejected rather
// than truncated. The float fallback covers notations like 37.0 or 3.7e1
// and is limited to float64's exact-integer range; beyond it (including
// anything outside int64) the conversion would lose or wrap the value,
// so those are rejected.
func coerceInteger(value any, path string, errs *[]ParseError) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) <= 1<<53 {
			return int64(f)
		}
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected integer, got %s", v.String())})
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("cannot convert %q to integer without loss", v)})
	default:
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected integer, got %s", jsonTypeName(value))})
	}
	return nil
}

// coerceNumber accepts JSON numbers and numeric strings.
func coerceNumber(value any, path string, errs *[]ParseError) any {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("invalid number %s", v.String())})
			return nil
		}
		return f
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return f
		}
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("cannot convert %q to number", v)})
	default:
		*errs = append(*errs, ParseError{Path: path, Message: fmt.Sprintf("expected number, got %s", jsonTypeName(value))})
	}
	return nil
}

func jsonTypeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", value)
	}
}
