// Package config reads and writes the Settings.ini file.
package config

import (
	"fmt"
	"time"

	"gopkg.in/ini.v1"
)

// Settings is the full runtime configuration.
type Settings struct {
	// Bot loop
	DelayMs      int
	TargetWindow string
	Debug        bool
	TextSkip     bool

	// Templates
	TemplateDir  string
	TemplateSpec string
	PreferHDR    bool

	// History
	HistoryDB string

	// Failsafe
	ShakeDistance float64
	ShakeWindowMs int
	ShakeCount    int
	ShakePollMs   int

	// Logging
	LogLevel   string
	LogToFile  bool
	LogFile    string
	BufferSize int
}

// Interval returns the loop delay as a duration, clamped to the 10ms floor.
func (s *Settings) Interval() time.Duration {
	ms := s.DelayMs
	if ms < 10 {
		ms = 10
	}
	return time.Duration(ms) * time.Millisecond
}

// Default returns the built-in configuration used when no Settings.ini
// exists.
func Default() *Settings {
	return &Settings{
		DelayMs:       100,
		TargetWindow:  "LimbusCompany",
		Debug:         false,
		TextSkip:      false,
		TemplateDir:   "templates",
		TemplateSpec:  "templates/spec.yaml",
		PreferHDR:     false,
		HistoryDB:     "data/history.db",
		ShakeDistance: 200,
		ShakeWindowMs: 150,
		ShakeCount:    3,
		ShakePollMs:   50,
		LogLevel:      "INFO",
		LogToFile:     false,
		LogFile:       "limbus-pilot.log",
		BufferSize:    500,
	}
}

// LoadFromINI loads configuration from a Settings.ini file. Missing keys
// fall back to the defaults.
func LoadFromINI(path string) (*Settings, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	def := Default()
	s := &Settings{}

	bot := cfg.Section("Bot")
	s.DelayMs = bot.Key("DelayMs").MustInt(def.DelayMs)
	s.TargetWindow = bot.Key("TargetWindow").MustString(def.TargetWindow)
	s.Debug = bot.Key("Debug").MustBool(def.Debug)
	s.TextSkip = bot.Key("TextSkip").MustBool(def.TextSkip)

	tmpl := cfg.Section("Templates")
	s.TemplateDir = tmpl.Key("Dir").MustString(def.TemplateDir)
	s.TemplateSpec = tmpl.Key("SpecFile").MustString(def.TemplateSpec)
	s.PreferHDR = tmpl.Key("PreferHDR").MustBool(def.PreferHDR)

	hist := cfg.Section("History")
	s.HistoryDB = hist.Key("Database").MustString(def.HistoryDB)

	fs := cfg.Section("Failsafe")
	s.ShakeDistance = fs.Key("Distance").MustFloat64(def.ShakeDistance)
	s.ShakeWindowMs = fs.Key("WindowMs").MustInt(def.ShakeWindowMs)
	s.ShakeCount = fs.Key("Count").MustInt(def.ShakeCount)
	s.ShakePollMs = fs.Key("PollMs").MustInt(def.ShakePollMs)

	log := cfg.Section("Logging")
	s.LogLevel = log.Key("Level").MustString(def.LogLevel)
	s.LogToFile = log.Key("ToFile").MustBool(def.LogToFile)
	s.LogFile = log.Key("File").MustString(def.LogFile)
	s.BufferSize = log.Key("BufferSize").MustInt(def.BufferSize)

	return s, nil
}

// SaveToINI writes the settings back out, preserving the section layout
// LoadFromINI reads.
func SaveToINI(s *Settings, path string) error {
	cfg := ini.Empty()

	bot := cfg.Section("Bot")
	bot.Key("DelayMs").SetValue(fmt.Sprintf("%d", s.DelayMs))
	bot.Key("TargetWindow").SetValue(s.TargetWindow)
	bot.Key("Debug").SetValue(fmt.Sprintf("%t", s.Debug))
	bot.Key("TextSkip").SetValue(fmt.Sprintf("%t", s.TextSkip))

	tmpl := cfg.Section("Templates")
	tmpl.Key("Dir").SetValue(s.TemplateDir)
	tmpl.Key("SpecFile").SetValue(s.TemplateSpec)
	tmpl.Key("PreferHDR").SetValue(fmt.Sprintf("%t", s.PreferHDR))

	hist := cfg.Section("History")
	hist.Key("Database").SetValue(s.HistoryDB)

	fs := cfg.Section("Failsafe")
	fs.Key("Distance").SetValue(fmt.Sprintf("%g", s.ShakeDistance))
	fs.Key("WindowMs").SetValue(fmt.Sprintf("%d", s.ShakeWindowMs))
	fs.Key("Count").SetValue(fmt.Sprintf("%d", s.ShakeCount))
	fs.Key("PollMs").SetValue(fmt.Sprintf("%d", s.ShakePollMs))

	log := cfg.Section("Logging")
	log.Key("Level").SetValue(s.LogLevel)
	log.Key("ToFile").SetValue(fmt.Sprintf("%t", s.LogToFile))
	log.Key("File").SetValue(s.LogFile)
	log.Key("BufferSize").SetValue(fmt.Sprintf("%d", s.BufferSize))

	return cfg.SaveTo(path)
}
