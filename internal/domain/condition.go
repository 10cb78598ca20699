package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinCondition = 1
	MaxCondition = 5
)

var ErrConditionRange = errors.New("condition must be between 1 and 5")

// Condition is an optional 1..5 score. The zero value is unset.
type Condition struct {
	score uint8
}

func NewCondition(n int) (Condition, error) {
	if n < MinCondition || n > MaxCondition {
		return Condition{}, fmt.Errorf("%w: got %d", ErrConditionRange, n)
	}
	return Condition{score: uint8(n)}, nil
}

// MustCondition is NewCondition for constants in tests and seed data.
func MustCondition(n int) Condition {
	c, err := NewCondition(n)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCondition reads form input: blank means unset.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Condition{}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return Condition{}, fmt.Errorf("invalid condition %q: %w", s, err)
	}
	return NewCondition(n)
}

func (c Condition) IsSet() bool { return c.score != 0 }

func (c Condition) Value() (int, bool) {
	return int(c.score), c.score != 0
}

// String renders the score, or "" when unset.
func (c Condition) String() string {
	if c.score == 0 {
		return ""
	}
	return strconv.Itoa(int(c.score))
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c.score == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(int(c.score))), nil
}

// UnmarshalJSON accepts null, "" and numbers (bare or quoted).
func (c *Condition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = Condition{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseCondition(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid condition: %w", err)
	}
	parsed, err := NewCondition(n)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
