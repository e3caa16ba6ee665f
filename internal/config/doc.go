// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for tabchat.
//
// Configuration is a TOML file plus environment and flag overrides, read
// through viper and written back with BurntSushi/toml.
//
// # Key Types
//
//   - Config: provider, model, storage, ui and log sections
//   - ConfigurationError: configuration that prevents startup
//   - ValidateErrors: field-level validation failures
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (--model, --save-dir)
//   - GROQ_API_KEY for the API key
//   - Environment variables (TABCHAT_<SECTION>_<KEY>)
//   - ~/.tabchat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("", cmd.Flags())
//	if err != nil {
//	    return err
//	}
//	if err := cfg.RequireCredential(); err != nil {
//	    return err
//	}
package config
