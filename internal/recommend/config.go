package recommend

// MaxPriceScope selects which price set normalizes the price ratio.
type MaxPriceScope string

const (
	// MaxPriceAll uses every price fetched for the product.
	MaxPriceAll MaxPriceScope = "all"
	// MaxPriceCandidates uses only prices of stores that survived filtering.
	MaxPriceCandidates MaxPriceScope = "candidates"
)

// Config holds ranking settings.
type Config struct {
	MaxPriceScope MaxPriceScope `mapstructure:"max_price_scope"`
	// RunnerUpLimit is the rank (exclusive) below which stores get the runner-up tier.
	RunnerUpLimit int `mapstructure:"runner_up_limit"`
}

// DefaultConfig returns the default ranking configuration.
func DefaultConfig() Config {
	return Config{
		MaxPriceScope: MaxPriceAll,
		RunnerUpLimit: 5,
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c Config) Validate() error {
	switch c.MaxPriceScope {
	case MaxPriceAll, MaxPriceCandidates:
	default:
		return ErrInvalidConfig{Field: "max_price_scope", Reason: "must be one of all, candidates"}
	}
	if c.RunnerUpLimit < 1 {
		return ErrInvalidConfig{Field: "runner_up_limit", Reason: "must be at least 1"}
	}
	return nil
}

// TierForRank maps a rank index to its display tier.
func (c Config) TierForRank(rank int) Tier {
	switch {
	case rank == 0:
		return TierTop
	case rank < c.RunnerUpLimit:
		return TierRunnerUp
	default:
		return TierDefault
	}
}

// ErrInvalidConfig is returned when the configuration is invalid.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e ErrInvalidConfig) Error() string {
	return e.Field + ": " + e.Reason
}
