// Package preference classifies store selections and learns per-user
// price/distance weights from them.
package preference

import (
	"fmt"
	"time"

	"github.com/storeradar/radar-service/internal/recommend"
)

// Type is the focus a selection revealed.
type Type string

const (
	TypePrice    Type = "price"
	TypeDistance Type = "distance"
	TypeNeutral  Type = "neutral"
)

// ParseType parses a stored preference type.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePrice, TypeDistance, TypeNeutral:
		return Type(s), nil
	default:
		return "", fmt.Errorf("unknown preference type %q", s)
	}
}

// Identity is the authenticated caller. A zero Identity is anonymous.
type Identity struct {
	UserID string `json:"user_id"`
	Token  string `json:"-"`
}

// Authenticated reports whether the identity carries a user.
func (i Identity) Authenticated() bool {
	return i.UserID != ""
}

// Selection is one logged store choice.
type Selection struct {
	UserID     string    `json:"user_id"`
	StoreID    string    `json:"store_id"`
	StoreName  string    `json:"store_name,omitempty"`
	Product    string    `json:"product"`
	Price      int64     `json:"price"`
	DistanceKm float64   `json:"distance"`
	Type       Type      `json:"preference_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// Config holds classification and learning settings.
type Config struct {
	// Threshold is the relative gap to the candidate average that counts as a focus.
	Threshold float64 `mapstructure:"threshold"`
	// ThresholdSource is "fixed" or "remote".
	ThresholdSource string `mapstructure:"threshold_source"`
	// LearnEvery re-derives weights on every n-th selection.
	LearnEvery int `mapstructure:"learn_every"`
	// Window is how many recent selections feed one update.
	Window int `mapstructure:"window"`
	// Alpha is the share of the new estimate mixed into the old weights.
	Alpha float64 `mapstructure:"alpha"`
}

// DefaultConfig returns the default preference configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.1,
		ThresholdSource: "fixed",
		LearnEvery:      10,
		Window:          10,
		Alpha:           0.2,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.Threshold < 0 {
		return recommend.ErrInvalidConfig{Field: "preference.threshold", Reason: "must be non-negative"}
	}
	if c.ThresholdSource != "fixed" && c.ThresholdSource != "remote" {
		return recommend.ErrInvalidConfig{Field: "preference.threshold_source", Reason: "must be one of fixed, remote"}
	}
	if c.LearnEvery < 1 {
		return recommend.ErrInvalidConfig{Field: "preference.learn_every", Reason: "must be at least 1"}
	}
	if c.Window < 1 {
		return recommend.ErrInvalidConfig{Field: "preference.window", Reason: "must be at least 1"}
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return recommend.ErrInvalidConfig{Field: "preference.alpha", Reason: "must be in (0, 1]"}
	}
	return nil
}
