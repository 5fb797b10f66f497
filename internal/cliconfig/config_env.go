package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (NCPROBE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("record-dim", os.Getenv("NCPROBE_RECORD_DIM"), &cfg.RecordDim)
	s.setString("output", os.Getenv("NCPROBE_OUTPUT"), &cfg.Output)

	if err := s.setDuration("debounce", os.Getenv("NCPROBE_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("NCPROBE_WATCH"), &cfg.Watch)
	s.setBoolFromString("debug", os.Getenv("NCPROBE_DEBUG"), &cfg.Debug)

	return nil
}
