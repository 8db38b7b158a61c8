package neat

import (
	"fmt"
	"strings"

	"gopkg.in/go-playground/validator.v9"
	"gopkg.in/ini.v1"
)

// Config stores the parameters for building, mutating and training networks.
type Config struct {
	Network  NetworkConfig
	Mutation MutationConfig
	Training TrainingConfig
}

// NetworkConfig holds parameters applied to every network.
type NetworkConfig struct {
	Dropout  float64 `ini:"dropout" validate:"min=0,max=1"`
	Seed     int64   `ini:"seed"` // 0 seeds from the clock
	LogLevel string  `ini:"log_level" validate:"isdefault|oneof=debug info warning warn error"`
}

// MutationConfig holds the parameters of the mutation operators.
type MutationConfig struct {
	ModWeightMin float64 `ini:"mod_weight_min"`
	ModWeightMax float64 `ini:"mod_weight_max" validate:"gtefield=ModWeightMin"`
	ModBiasMin   float64 `ini:"mod_bias_min"`
	ModBiasMax   float64 `ini:"mod_bias_max" validate:"gtefield=ModBiasMin"`

	MutateOutput     bool `ini:"mutate_output"`      // MOD_ACTIVATION may pick output nodes
	SwapMutateOutput bool `ini:"swap_mutate_output"` // SWAP_NODES may pick output nodes
	KeepGates        bool `ini:"keep_gates"`         // SUB_NODE reassigns gaters

	AllowedActivations []string `ini:"allowed_activations" delim:" "` // Space-separated list, empty means all
	Methods            []string `ini:"methods" delim:" "`             // Space-separated list, or ALL / FFW
}

// TrainingConfig holds the parameters of Network.Train.
type TrainingConfig struct {
	Rate         float64 `ini:"rate" validate:"gt=0"`
	Momentum     float64 `ini:"momentum" validate:"min=0"`
	Iterations   int     `ini:"iterations" validate:"min=0"`
	Error        float64 `ini:"error" validate:"min=0"`
	BatchSize    int     `ini:"batch_size" validate:"min=1"`
	Cost         string  `ini:"cost"`
	RatePolicy   string  `ini:"rate_policy"`
	RateGamma    float64 `ini:"rate_gamma" validate:"min=0"`
	RateStepSize int     `ini:"rate_step_size" validate:"min=0"`
	RatePower    float64 `ini:"rate_power" validate:"min=0"`
	Shuffle      bool    `ini:"shuffle"`
	Clear        bool    `ini:"clear"`
	LogEvery     int     `ini:"log_every" validate:"min=0"`
}

// DefaultConfig returns the built-in defaults. LoadConfig starts from these, so
// an INI file only needs the keys it changes.
func DefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			LogLevel: "warning",
		},
		Mutation: MutationConfig{
			ModWeightMin:     -1,
			ModWeightMax:     1,
			ModBiasMin:       -1,
			ModBiasMax:       1,
			MutateOutput:     true,
			SwapMutateOutput: true,
			KeepGates:        true,
			Methods:          []string{"ALL"},
		},
		Training: TrainingConfig{
			Rate:       0.3,
			Error:      0.05,
			BatchSize:  1,
			Cost:       "MSE",
			RatePolicy: "FIXED",
		},
	}
}

// LoadConfig loads configuration parameters from an INI file with the
// sections [Network], [Mutation] and [Training].
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true, // Allow # comments starting with # or ;
		UnescapeValueCommentSymbols: true, // If # or ; appear in value, treat as value
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()

	// Map sections to structs
	if err := cfg.Section("Network").MapTo(&config.Network); err != nil {
		return nil, fmt.Errorf("failed to map [Network] section: %w", err)
	}
	if err := cfg.Section("Mutation").MapTo(&config.Mutation); err != nil {
		return nil, fmt.Errorf("failed to map [Mutation] section: %w", err)
	}
	if err := cfg.Section("Training").MapTo(&config.Training); err != nil {
		return nil, fmt.Errorf("failed to map [Training] section: %w", err)
	}

	// --- Explicitly clean potentially problematic string values ---
	config.Network.LogLevel = cleanIniString(config.Network.LogLevel)
	config.Training.Cost = cleanIniString(config.Training.Cost)
	config.Training.RatePolicy = cleanIniString(config.Training.RatePolicy)
	config.Mutation.AllowedActivations = cleanIniList(config.Mutation.AllowedActivations)
	config.Mutation.Methods = cleanIniList(config.Mutation.Methods)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks value ranges and that every named activation, mutation
// method, cost function and rate policy exists.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if len(c.Mutation.Methods) == 0 {
		return fmt.Errorf("config error: methods must be specified")
	}
	if c.Training.Iterations == 0 && c.Training.Error == 0 {
		return fmt.Errorf("config error: at least one of iterations, error must be positive")
	}
	if _, err := ParseLogLevel(c.Network.LogLevel); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := c.Mutations(); err != nil {
		return err
	}
	if _, err := c.TrainOptions(); err != nil {
		return err
	}
	return nil
}

// Mutations builds the configured mutation operators. The ALL and FFW entries
// expand to AllMutations and FFWMutations.
func (c *Config) Mutations() ([]Mutation, error) {
	var allowed []Squash
	for _, name := range c.Mutation.AllowedActivations {
		squash, err := GetSquash(name)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid allowed_activations entry: %w", err)
		}
		allowed = append(allowed, squash)
	}

	var methods []Mutation
	for _, name := range c.Mutation.Methods {
		switch strings.ToUpper(name) {
		case "ALL":
			methods = append(methods, AllMutations()...)
			continue
		case "FFW":
			methods = append(methods, FFWMutations()...)
			continue
		}
		kind, err := ParseMutationKind(name)
		if err != nil {
			return nil, fmt.Errorf("config error: invalid methods entry: %w", err)
		}
		methods = append(methods, DefaultMutation(kind))
	}

	for i := range methods {
		m := &methods[i]
		switch m.Kind {
		case SubNode:
			m.KeepGates = c.Mutation.KeepGates
		case ModWeight:
			m.Min, m.Max = c.Mutation.ModWeightMin, c.Mutation.ModWeightMax
		case ModBias:
			m.Min, m.Max = c.Mutation.ModBiasMin, c.Mutation.ModBiasMax
		case ModActivation:
			m.MutateOutput = c.Mutation.MutateOutput
			if len(allowed) > 0 {
				m.Allowed = allowed
			}
		case SwapNodes:
			m.MutateOutput = c.Mutation.SwapMutateOutput
		}
	}
	return methods, nil
}

// TrainOptions builds Network.Train options from the [Training] section and
// the network dropout.
func (c *Config) TrainOptions() (TrainOptions, error) {
	t := c.Training
	cost, err := GetCost(t.Cost)
	if err != nil {
		return TrainOptions{}, fmt.Errorf("config error: %w", err)
	}
	policy, err := GetRatePolicy(t.RatePolicy, t.RateGamma, t.RateStepSize, t.RatePower)
	if err != nil {
		return TrainOptions{}, fmt.Errorf("config error: %w", err)
	}
	return TrainOptions{
		Rate:       t.Rate,
		Momentum:   t.Momentum,
		Dropout:    c.Network.Dropout,
		BatchSize:  t.BatchSize,
		Iterations: t.Iterations,
		Error:      t.Error,
		Cost:       cost,
		RatePolicy: policy,
		Shuffle:    t.Shuffle,
		Clear:      t.Clear,
		LogEvery:   t.LogEvery,
	}, nil
}

// NewNetwork creates a network seeded and configured from the [Network]
// section.
func (c *Config) NewNetwork(input, output int) (*Network, error) {
	n, err := NewNetwork(input, output, NewRand(c.Network.Seed))
	if err != nil {
		return nil, err
	}
	n.Dropout = c.Network.Dropout
	return n, nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	// Remove comments starting with # or ;
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}

// cleanIniList applies cleanIniString to every element and drops empty ones.
func cleanIniList(list []string) []string {
	cleaned := list[:0]
	for _, s := range list {
		if s = cleanIniString(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned
}
