package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/alnah/go-tex2png/internal/config"
)

// dotEnvFile is loaded from the working directory at startup.
const dotEnvFile = ".env"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath string // TEX2PNG_CONFIG: config file name or path
	Latex      string // TEX2PNG_LATEX: latex command line
	Dvipng     string // TEX2PNG_DVIPNG: dvipng command line
	WorkDir    string // TEX2PNG_WORKDIR: fixed work directory
	Timeout    string // TEX2PNG_TIMEOUT: conversion timeout
	LogFile    string // TEX2PNG_LOG_FILE: JSON log file
}

// knownEnvVars lists valid TEX2PNG_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"TEX2PNG_CONFIG":   true,
	"TEX2PNG_LATEX":    true,
	"TEX2PNG_DVIPNG":   true,
	"TEX2PNG_WORKDIR":  true,
	"TEX2PNG_TIMEOUT":  true,
	"TEX2PNG_LOG_FILE": true,
}

// loadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// loadEnvConfig reads configuration from environment variables.
func loadEnvConfig() *envConfig {
	return &envConfig{
		ConfigPath: os.Getenv("TEX2PNG_CONFIG"),
		Latex:      os.Getenv("TEX2PNG_LATEX"),
		Dvipng:     os.Getenv("TEX2PNG_DVIPNG"),
		WorkDir:    os.Getenv("TEX2PNG_WORKDIR"),
		Timeout:    os.Getenv("TEX2PNG_TIMEOUT"),
		LogFile:    os.Getenv("TEX2PNG_LOG_FILE"),
	}
}

// warnUnknownEnvVars logs warnings for unrecognized TEX2PNG_* variables.
// Helps catch typos like TEX2PNG_DVIPGN.
func warnUnknownEnvVars(logger *log.Logger) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "TEX2PNG_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				logger.Warn("unknown environment variable (typo?)", "name", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with set environment variables.
// Together with mergeFlags this gives: CLI flags > env vars > config file > defaults.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Latex != "" {
		cfg.Tools.Latex = env.Latex
	}
	if env.Dvipng != "" {
		cfg.Tools.Dvipng = env.Dvipng
	}
	if env.WorkDir != "" {
		cfg.WorkDir = env.WorkDir
	}
	if env.Timeout != "" {
		cfg.Timeout = env.Timeout
	}
	if env.LogFile != "" {
		cfg.Log.File = env.LogFile
	}
}
