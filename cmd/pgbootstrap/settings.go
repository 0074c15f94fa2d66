package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// settings is the optional YAML file given with --settings. Keys are the
// flag names; every key is optional. Flags set on the command line win.
type settings struct {
	BackupSource     *string `yaml:"backup-source"`
	PGData           *string `yaml:"pgdata"`
	ConfigPath       *string `yaml:"config-path"`
	StagingDir       *string `yaml:"staging-dir"`
	StopTimeout      *string `yaml:"stop-timeout"`
	Handoff          *string `yaml:"handoff"`
	ProbeObjectStore *bool   `yaml:"probe-object-store"`
	LockPath         *string `yaml:"lock-path"`
	LockWait         *string `yaml:"lock-wait"`
	LogLevel         *string `yaml:"log-level"`
}

// loadSettings reads path. Unknown keys are rejected so that a typo does
// not silently fall back to a default. An empty file is valid.
func loadSettings(path string) (settings, error) {
	var s settings

	f, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// values returns the set keys as flag values.
func (s settings) values() map[string]string {
	out := make(map[string]string)
	for name, v := range map[string]*string{
		flagBackupSource: s.BackupSource,
		flagPGData:       s.PGData,
		flagConfigPath:   s.ConfigPath,
		flagStagingDir:   s.StagingDir,
		flagStopTimeout:  s.StopTimeout,
		flagHandoff:      s.Handoff,
		flagLockPath:     s.LockPath,
		flagLockWait:     s.LockWait,
		flagLogLevel:     s.LogLevel,
	} {
		if v != nil {
			out[name] = *v
		}
	}
	if s.ProbeObjectStore != nil {
		out[flagProbeObjectStore] = strconv.FormatBool(*s.ProbeObjectStore)
	}
	return out
}

// apply sets every flag named in s that was not given on the command line.
// Values go through the flags' own parsers.
func (s settings) apply(fs *pflag.FlagSet) error {
	var errs []error
	for name, v := range s.values() {
		if fs.Changed(name) {
			continue
		}
		if err := fs.Set(name, v); err != nil {
			errs = append(errs, fmt.Errorf("settings %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
