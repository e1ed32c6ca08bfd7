// haven - a terminal personal-safety companion.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/haven-tui/internal/auth"
	"github.com/jeranaias/haven-tui/internal/chat"
	"github.com/jeranaias/haven-tui/internal/config"
	"github.com/jeranaias/haven-tui/internal/export"
	"github.com/jeranaias/haven-tui/internal/gemini"
	"github.com/jeranaias/haven-tui/internal/logging"
	"github.com/jeranaias/haven-tui/internal/safety"
	"github.com/jeranaias/haven-tui/internal/storage"
	"github.com/jeranaias/haven-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		configPath  = flag.String("config", "", "path to config file (default ~/.haven/config.toml)")
		wipe        = flag.Bool("wipe", false, "wipe all stored data and exit")
		debug       = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("haven %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *wipe, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, wipe, debug bool) error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
	} else {
		cfg, err = config.Load()
		if cp, perr := config.ConfigPath(); perr == nil {
			configPath = cp
		}
	}
	if err != nil {
		return err
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	log, err := logging.New(dir, debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	storagePath := cfg.Storage.Path
	if storagePath == "" {
		storagePath, err = config.DefaultStoragePath()
		if err != nil {
			return err
		}
	}
	store, err := storage.Open(storagePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if wipe {
		if err := store.Wipe(); err != nil {
			return fmt.Errorf("wipe storage: %w", err)
		}
		fmt.Println("All stored data wiped.")
		return nil
	}

	client := gemini.NewClientWithConfig(&gemini.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Model:   cfg.Gemini.Model,
		Timeout: time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
	}, log)
	if !client.Configured() {
		log.Warn("no API key configured, AI features run on fallbacks")
	}

	app := ui.New(ui.Deps{
		Config:    cfg,
		Store:     store,
		Auth:      auth.NewManager(store, auth.Config{
			AllowPasswordlessLogin: cfg.Auth.AllowPasswordlessLogin,
			HashPasswords:          cfg.Auth.HashPasswords,
		}, log),
		Chats:     chat.NewManager(store),
		Monitor:   safety.NewMonitor(store, client, cfg.Safety.ScansPerMinute, log),
		Responder: client,
		Exporter:  export.NewPDFExporter(nil),
		Log:       log,
	})

	program := tea.NewProgram(app, tea.WithAltScreen())

	// Live-reload the config file so idle-lock and theme changes land
	// without a restart.
	if configPath != "" {
		watcher, werr := config.NewWatcher(configPath, func(updated *config.Config) {
			program.Send(ui.ConfigReloaded(updated))
		})
		if werr == nil {
			if err := watcher.Watch(); err != nil {
				log.Warn("config watcher failed to start", zap.Error(err))
			}
			defer watcher.Close()
		}
	}

	log.Info("haven starting", zap.String("version", Version))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run interface: %w", err)
	}
	return nil
}
