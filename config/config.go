// Package config provides environment-variable-first loading of a
// submission profile, with optional YAML file fallback, and applies it
// to an esmtp.Session.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/tru7/esmtp"
)

// Config holds one submission profile.
type Config struct {
	// Server is the submission server as "host[:service]".
	Server string `yaml:"server"`

	// LocalName overrides the EHLO greeting name. Empty keeps the
	// system-detected hostname.
	LocalName string `yaml:"local_name"`

	TLS      TLSConfig     `yaml:"tls"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	Logging  LoggingConfig `yaml:"logging"`
}

// TLSConfig holds the STARTTLS policy.
type TLSConfig struct {
	// Policy is one of "opportunistic", "mandatory" or "none".
	Policy string `yaml:"policy"`
}

// TimeoutConfig holds protocol timeouts in time.ParseDuration syntax.
type TimeoutConfig struct {
	Command    string `yaml:"command"`
	Submission string `yaml:"submission"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load builds a profile from environment variables on top of defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads a profile from a YAML file as the base layer, then
// overrides with environment variables. Returns an error if the file
// does not exist or does not parse.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.TLS.Policy = "opportunistic"
	c.Logging.Level = "info"
}

func (c *Config) applyEnvVars() {
	if v := os.Getenv("ESMTP_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("ESMTP_LOCAL_NAME"); v != "" {
		c.LocalName = v
	}
	if v := os.Getenv("ESMTP_TLS_POLICY"); v != "" {
		c.TLS.Policy = v
	}
	if v := os.Getenv("ESMTP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Apply configures s from the profile. Unset fields leave the session's
// current values in place.
func (c *Config) Apply(s *esmtp.Session) error {
	if c.Server != "" {
		if err := s.SetServer(c.Server); err != nil {
			return err
		}
	}
	if c.LocalName != "" {
		if err := s.SetLocalName(c.LocalName); err != nil {
			return err
		}
	}

	if c.TLS.Policy != "" {
		policy, err := parsePolicy(c.TLS.Policy)
		if err != nil {
			return err
		}
		if err := s.SetTLSPolicy(policy); err != nil {
			return err
		}
	}

	if c.Timeouts.Command != "" {
		d, err := time.ParseDuration(c.Timeouts.Command)
		if err != nil {
			return fmt.Errorf("bad command timeout: %w", err)
		}
		s.CommandTimeout = d
	}
	if c.Timeouts.Submission != "" {
		d, err := time.ParseDuration(c.Timeouts.Submission)
		if err != nil {
			return fmt.Errorf("bad submission timeout: %w", err)
		}
		s.SubmissionTimeout = d
	}

	if c.Logging.Level != "" {
		level, err := logrus.ParseLevel(c.Logging.Level)
		if err != nil {
			return fmt.Errorf("bad log level: %w", err)
		}
		logger := logrus.New()
		logger.SetLevel(level)
		if err := s.SetLogger(logger); err != nil {
			return err
		}
	}

	return nil
}

func parsePolicy(name string) (esmtp.TLSPolicy, error) {
	switch name {
	case "opportunistic":
		return esmtp.TLSOpportunistic, nil
	case "mandatory":
		return esmtp.TLSMandatory, nil
	case "none":
		return esmtp.TLSNone, nil
	}
	return 0, fmt.Errorf("unknown TLS policy %q", name)
}
