// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/mpycross/config.cue (or $XDG_CONFIG_HOME/mpycross
// on Linux, ~/Library/Application Support/mpycross/config.cue on macOS,
// %APPDATA%\mpycross\config.cue on Windows). It selects the compiler binary, the
// worker count for multi-file compiles, default compiler options, and UI settings.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
