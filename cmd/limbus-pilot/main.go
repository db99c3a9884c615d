package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/mirrorworks/limbus-pilot/internal/bot"
	"github.com/mirrorworks/limbus-pilot/internal/config"
	"github.com/mirrorworks/limbus-pilot/internal/cv"
	"github.com/mirrorworks/limbus-pilot/internal/failsafe"
	"github.com/mirrorworks/limbus-pilot/internal/history"
	"github.com/mirrorworks/limbus-pilot/internal/logging"
	"github.com/mirrorworks/limbus-pilot/internal/platform/winauto"
	"github.com/mirrorworks/limbus-pilot/internal/templates"
	"github.com/mirrorworks/limbus-pilot/internal/tuner"
)

func main() {
	configPath := pflag.StringP("config", "c", "Settings.ini", "path to the settings file")
	templateDir := pflag.String("templates", "", "override the template image directory")
	specFile := pflag.String("spec-file", "", "override the template tuning file")
	mode := pflag.String("mode", "", "start in an automation mode (thread_lux, exp_lux, mirror_full_auto)")
	textSkip := pflag.Bool("text-skip", false, "skip dialogue automatically")
	debug := pflag.Bool("debug", false, "enable debug logging")
	paused := pflag.Bool("paused", false, "start with the pause gate set")
	noHistory := pflag.Bool("no-history", false, "disable the run-history database")
	pflag.Parse()

	log := logging.NewLogger("main")

	cfg, err := config.LoadFromINI(*configPath)
	if err != nil {
		log.Warnf("failed to load %s, using defaults: %v", *configPath, err)
		cfg = config.Default()
	}
	if *templateDir != "" {
		cfg.TemplateDir = *templateDir
	}
	if *specFile != "" {
		cfg.TemplateSpec = *specFile
	}
	if *debug {
		cfg.Debug = true
		cfg.LogLevel = "DEBUG"
	}
	if *textSkip {
		cfg.TextSkip = true
	}

	log.SetMinLevel(parseLevel(cfg.LogLevel))
	buffer := logging.NewBuffer(cfg.BufferSize)
	log.AddOutput(buffer)
	if cfg.LogToFile {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Warnf("failed to open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.AddOutput(f)
		}
	}

	store := templates.NewStore(cfg.TemplateDir, log.Named("templates"))
	if err := store.LoadSpecFile(cfg.TemplateSpec); err != nil {
		log.Warnf("failed to load template tuning from %s: %v", cfg.TemplateSpec, err)
	}
	if err := store.Load(); err != nil {
		log.Fatal("no usable templates, cannot start", err)
	}
	if cfg.PreferHDR {
		store.SetPreferHDR(true)
		if err := store.Refresh(); err != nil {
			log.Fatal("failed to reload templates for HDR", err)
		}
	}

	scores := cv.NewScoreboard()
	matcher := cv.NewMatcher(scores, log.Named("matcher"))
	batch := cv.NewBatch(matcher, log.Named("batch"))

	gate := bot.NewGate()
	if *paused {
		gate.Pause()
	}
	state := bot.NewState()
	state.SetDebug(cfg.Debug)
	state.SetTextSkip(cfg.TextSkip)

	adapter := winauto.NewAdapter(cfg.TargetWindow, log.Named("winauto"))

	var recorder bot.SequenceRecorder
	var runs *history.Store
	if !*noHistory {
		runs, err = history.Open(cfg.HistoryDB)
		if err != nil {
			log.Warnf("run history disabled: %v", err)
		} else {
			defer runs.Close()
			recorder = runs
		}
	}

	surface := tuner.NewSurface(store, scores, gate, state, buffer, cfg.TemplateSpec)
	if *mode != "" {
		m, ok := parseMode(*mode)
		if !ok {
			log.Fatal("unknown mode "+*mode, nil)
		}
		surface.SetMode(m)
	}

	monitor := failsafe.NewMonitor(failsafe.Config{
		Interval: time.Duration(cfg.ShakePollMs) * time.Millisecond,
		Distance: cfg.ShakeDistance,
		Window:   time.Duration(cfg.ShakeWindowMs) * time.Millisecond,
		Shakes:   cfg.ShakeCount,
	}, gate, adapter, log.Named("failsafe"))

	seq := bot.NewSequencer(bot.Config{
		Interval:     cfg.Interval(),
		TargetWindow: cfg.TargetWindow,
	}, gate, state, store, matcher, batch, adapter, adapter, adapter, recorder, log.Named("sequencer"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go monitor.Run(ctx)
	seq.Run(ctx)
}

func parseLevel(s string) logging.LogLevel {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return logging.LogLevelDebug
	case "WARN":
		return logging.LogLevelWarn
	case "ERROR":
		return logging.LogLevelError
	default:
		return logging.LogLevelInfo
	}
}

func parseMode(s string) (bot.Mode, bool) {
	switch strings.ToLower(s) {
	case "thread_lux":
		return bot.ModeThreadLux, true
	case "exp_lux":
		return bot.ModeExpLux, true
	case "mirror_full_auto":
		return bot.ModeMirrorFullAuto, true
	default:
		return bot.ModeIdle, false
	}
}
