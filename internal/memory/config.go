package memory

// Config holds the memory window sizes.
type Config struct {
	ShortTermLimit  int `json:"short_term_limit"`
	TopicWindow     int `json:"topic_window"`
	TopicMinTurns   int `json:"topic_min_turns"`
	LongTermSamples int `json:"long_term_samples"`
	RetentionDays   int `json:"retention_days"`
}

// DefaultConfig returns a Config with the standard window sizes.
func DefaultConfig() Config {
	return Config{
		ShortTermLimit:  10,
		TopicWindow:     5,
		TopicMinTurns:   3,
		LongTermSamples: 100,
		RetentionDays:   90,
	}
}

// withDefaults replaces every non-positive field with its default.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ShortTermLimit <= 0 {
		c.ShortTermLimit = def.ShortTermLimit
	}
	if c.TopicWindow <= 0 {
		c.TopicWindow = def.TopicWindow
	}
	if c.TopicMinTurns <= 0 {
		c.TopicMinTurns = def.TopicMinTurns
	}
	if c.LongTermSamples <= 0 {
		c.LongTermSamples = def.LongTermSamples
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = def.RetentionDays
	}
	return c
}
