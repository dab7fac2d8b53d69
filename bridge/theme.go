package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RGB is a color as three 0-255 channels.
type RGB [3]uint8

// Theme is a primary/secondary color pair. Its JSON form is
// [[r,g,b],[r,g,b]].
type Theme struct {
	Primary   RGB
	Secondary RGB
}

// MarshalJSON implements json.Marshaler.
func (t Theme) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]RGB{t.Primary, t.Secondary})
}

// UnmarshalJSON implements json.Unmarshaler. It requires exactly two colors
// of exactly three channels, each in 0..255.
func (t *Theme) UnmarshalJSON(data []byte) error {
	var pair [][]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTheme, err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: want 2 colors, got %d", ErrInvalidTheme, len(pair))
	}
	var colors [2]RGB
	for i, c := range pair {
		if len(c) != 3 {
			return fmt.Errorf("%w: color %d has %d channels", ErrInvalidTheme, i, len(c))
		}
		for j, v := range c {
			if v < 0 || v > 255 {
				return fmt.Errorf("%w: color %d channel %d = %d", ErrInvalidTheme, i, j, v)
			}
			colors[i][j] = uint8(v)
		}
	}
	t.Primary, t.Secondary = colors[0], colors[1]
	return nil
}

// ParseTheme decodes a persisted theme. Every failure wraps ErrInvalidTheme.
func ParseTheme(s string) (Theme, error) {
	var t Theme
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		if !errors.Is(err, ErrInvalidTheme) {
			err = fmt.Errorf("%w: %w", ErrInvalidTheme, err)
		}
		return Theme{}, err
	}
	return t, nil
}
