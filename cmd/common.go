/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/valpere/cliptran/internal/clipboard"
	"github.com/valpere/cliptran/internal/config"
	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/log"
	"github.com/valpere/cliptran/internal/mode"
	"github.com/valpere/cliptran/internal/orchestrator"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/store"
	"github.com/valpere/cliptran/internal/terminology"
	"github.com/valpere/cliptran/internal/translator"
	"github.com/valpere/cliptran/internal/validator"
)

// app bundles the engine with the resources it was built from.
type app struct {
	engine  *orchestrator.Engine
	history *store.Store
	logger  *log.AppLogger
}

func (a *app) Close() {
	a.engine.Close()
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("failed to close history database: %v", err)
		}
	}
	_ = a.logger.Close()
}

// clipboardMode says how buildApp treats the system clipboard.
type clipboardMode int

const (
	clipboardNone clipboardMode = iota
	clipboardOptional
	clipboardRequired
)

// buildProviders constructs both provider variants from the configuration.
// Missing keys are not an error here; the engine reports them per request.
func buildProviders(cfg *config.Config, client *http.Client) translator.Registry {
	return translator.Registry{
		pricing.ProviderOpenAI:   translator.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Organization, client),
		pricing.ProviderDeepSeek: translator.NewDeepSeekProvider(cfg.DeepSeek.APIKey, cfg.DeepSeek.BaseURL, client),
	}
}

func loadModels(cfg *config.Config) (*pricing.Table, error) {
	if cfg.ModelsFile == "" {
		return pricing.DefaultTable(), nil
	}
	return pricing.LoadTable(cfg.ModelsFile)
}

func loadTerminology(cfg *config.Config) (*terminology.Dictionary, error) {
	if cfg.TermsFile == "" {
		return terminology.Default(), nil
	}
	return terminology.LoadFile(cfg.TermsFile)
}

func openHistory(cfg *config.Config) (*store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.History.DB), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return store.New(cfg.History.DB)
}

// buildApp wires the engine from appConfig.
func buildApp(clip clipboardMode) (*app, error) {
	cfg := appConfig
	logger := log.NewFile(cfg.LogFile, cfg.Debug)
	a := &app{logger: logger}

	models, err := loadModels(cfg)
	if err != nil {
		return nil, err
	}
	terms, err := loadTerminology(cfg)
	if err != nil {
		return nil, err
	}
	m, err := mode.Parse(cfg.Mode)
	if err != nil {
		return nil, err
	}
	display, err := orchestrator.ParseDisplay(cfg.Display)
	if err != nil {
		return nil, err
	}

	opts := orchestrator.Options{
		Providers:   buildProviders(cfg, nil),
		Models:      models,
		Ledger:      pricing.NewLedger(),
		Terminology: terminology.NewStore(terms),
		Logger:      logger,
		Settings: orchestrator.Settings{
			Source:   cfg.SourceLang,
			Target:   detector.Language(cfg.TargetLang),
			Mode:     m,
			ModelID:  cfg.Model,
			Quality:  cfg.Quality,
			AutoCopy: cfg.AutoCopy,
			Display:  display,
		},
		RequestTimeout: cfg.RequestTimeout,
		BatchDelay:     cfg.BatchDelay,
		PollInterval:   cfg.PollInterval,
		ErrorBackoff:   cfg.ErrorBackoff,
	}

	if clip != clipboardNone {
		sys, err := clipboard.NewSystem()
		switch {
		case err == nil:
			opts.Clipboard = sys
		case clip == clipboardRequired:
			return nil, err
		default:
			logger.Warn("clipboard unavailable, clipboard features disabled: %v", err)
		}
	}

	if cfg.ValidateOutput {
		opts.Validator = validator.New()
	}

	if cfg.History.Enabled && !noHistory {
		h, err := openHistory(cfg)
		if err != nil {
			logger.Warn("history disabled: %v", err)
		} else {
			a.history = h
			opts.History = h
		}
	}

	engine, err := orchestrator.New(opts)
	if err != nil {
		if a.history != nil {
			a.history.Close()
		}
		return nil, err
	}
	a.engine = engine
	logger.Debug("engine ready: model=%s %s -> %s mode=%s", cfg.Model, cfg.SourceLang, cfg.TargetLang, m)
	return a, nil
}
