package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.HTTP.UserAgent = strings.TrimSpace(c.HTTP.UserAgent)
	c.Timezone.Policy = strings.ToLower(strings.TrimSpace(c.Timezone.Policy))
	c.Timezone.Region = strings.TrimSpace(c.Timezone.Region)
	c.Output.GeneratorName = strings.TrimSpace(c.Output.GeneratorName)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.Input, err = expandPath(strings.TrimSpace(c.Paths.Input)); err != nil {
		return fmt.Errorf("paths.input: %w", err)
	}
	if c.Paths.Output, err = expandPath(strings.TrimSpace(c.Paths.Output)); err != nil {
		return fmt.Errorf("paths.output: %w", err)
	}
	if c.Paths.Log, err = expandPath(strings.TrimSpace(c.Paths.Log)); err != nil {
		return fmt.Errorf("paths.log: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = os.TempDir()
	}
	if c.Paths.WorkDir, err = expandPath(strings.TrimSpace(c.Paths.WorkDir)); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.Lock) == "" && c.Paths.Output != "" {
		c.Paths.Lock = c.Paths.Output + ".lock"
	}
	if c.Paths.Lock, err = expandPath(strings.TrimSpace(c.Paths.Lock)); err != nil {
		return fmt.Errorf("paths.lock: %w", err)
	}
	return nil
}
