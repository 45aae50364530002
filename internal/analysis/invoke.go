package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Client is the analysis service: a fixed instruction context plus a free-text
// payload in, free text out.
type Client interface {
	Complete(ctx context.Context, instructions, payload string) (string, error)
}

// Invoke calls the service and decodes the first JSON object of its answer into T.
// Every failure is typed: *TransportError, ErrNoResult or ErrMalformedResult.
func Invoke[T any](ctx context.Context, client Client, instructions, payload string, validate func(*T) error) (T, error) {
	var zero T

	text, err := client.Complete(ctx, instructions, payload)
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) || errors.Is(err, ErrNoResult) || errors.Is(err, ErrMalformedResult) {
			return zero, err
		}
		return zero, &TransportError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return zero, ErrNoResult
	}

	object, ok := ExtractJSONObject(text)
	if !ok {
		return zero, malformed("no JSON object in response")
	}

	var result T
	if err := json.Unmarshal([]byte(object), &result); err != nil {
		return zero, malformed("%v", err)
	}
	if validate != nil {
		if err := validate(&result); err != nil {
			if errors.Is(err, ErrMalformedResult) {
				return zero, err
			}
			return zero, malformed("%v", err)
		}
	}
	return result, nil
}

// ExtractJSONObject returns the first balanced JSON object in text. Code fences,
// preamble and postamble around it are ignored, and braces inside strings do not count.
func ExtractJSONObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchObject(text, start); ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchObject finds the index of the brace closing the object opened at start.
func matchObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
