package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidScene is wrapped by every ValidationError.
var ErrInvalidScene = errors.New("invalid scene")

// TimestampLayout is ISO-8601 with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// ValidationError describes why a scene blob was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid scene: %s", e.Reason)
	}
	return fmt.Sprintf("invalid scene: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidScene }

// Envelope is the durable JSON form of a scene.
type Envelope struct {
	Version   string  `json:"version"`
	Timestamp string  `json:"timestamp"`
	Paths     []Path  `json:"paths"`
	Shapes    []Shape `json:"shapes"`
}

// Encode serializes a scene with two-space indentation.
func Encode(sc Scene, now time.Time) ([]byte, error) {
	sc = sc.Clone()
	env := Envelope{
		Version:   FormatVersion,
		Timestamp: now.UTC().Format(TimestampLayout),
		Paths:     sc.Paths,
		Shapes:    sc.Shapes,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

// Decode parses and validates a scene blob. Both "paths" and "shapes" must
// be present and be arrays; other envelope fields are informational.
func Decode(data []byte) (Scene, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Scene{}, &ValidationError{Reason: "malformed json"}
	}

	pathsRaw, err := requireArray(raw, "paths")
	if err != nil {
		return Scene{}, err
	}
	shapesRaw, err := requireArray(raw, "shapes")
	if err != nil {
		return Scene{}, err
	}

	sc := NewEmptyScene()
	if err := json.Unmarshal(pathsRaw, &sc.Paths); err != nil {
		return Scene{}, &ValidationError{Field: "paths", Reason: err.Error()}
	}
	if err := json.Unmarshal(shapesRaw, &sc.Shapes); err != nil {
		return Scene{}, &ValidationError{Field: "shapes", Reason: err.Error()}
	}

	if err := Validate(sc); err != nil {
		return Scene{}, err
	}
	for i := range sc.Shapes {
		sc.Shapes[i].Normalize()
	}
	return sc, nil
}

// Validate checks element ids, shape types and point arity.
func Validate(sc Scene) error {
	seen := make(map[string]struct{}, sc.Len())
	claim := func(field, id string) error {
		if id == "" {
			return &ValidationError{Field: field, Reason: "missing id"}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("duplicate id %q", id)}
		}
		seen[id] = struct{}{}
		return nil
	}

	for i, p := range sc.Paths {
		field := fmt.Sprintf("paths[%d]", i)
		if err := claim(field, p.ID); err != nil {
			return err
		}
		if len(p.Points)%2 != 0 {
			return &ValidationError{Field: field, Reason: "odd number of coordinates"}
		}
	}
	for i, s := range sc.Shapes {
		field := fmt.Sprintf("shapes[%d]", i)
		if err := claim(field, s.ID); err != nil {
			return err
		}
		if !s.Type.Valid() {
			return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown type %q", s.Type)}
		}
		if s.Type.IsSegment() && len(s.Points) != 0 && len(s.Points) != 4 {
			return &ValidationError{Field: field, Reason: "segment needs exactly two endpoints"}
		}
	}
	return nil
}

func requireArray(raw map[string]json.RawMessage, key string) (json.RawMessage, error) {
	v, ok := raw[key]
	if !ok {
		return nil, &ValidationError{Field: key, Reason: "missing"}
	}
	v = bytes.TrimSpace(v)
	if len(v) == 0 || v[0] != '[' {
		return nil, &ValidationError{Field: key, Reason: "not an array"}
	}
	return v, nil
}
