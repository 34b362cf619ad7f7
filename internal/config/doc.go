// Package config loads keydrive settings.
//
// Settings are layered, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command line flags      │  ← applied by the caller
//	├─────────────────────────────┤
//	│  3. KEYDRIVE_* environment  │
//	├─────────────────────────────┤
//	│  2. Config file             │  ← keydrive.toml or keydrive.yaml
//	├─────────────────────────────┤
//	│  1. Built-in defaults       │
//	└─────────────────────────────┘
//
// The file is found in the user config directory (for example
// ~/.config/keydrive/keydrive.toml) unless a path is given. Durations are
// strings such as "600ms"; bare integers are read as milliseconds.
//
// # Sub-packages
//
//   - loader: TOML, YAML and environment loading, deep merge
//   - watcher: file change notification for live reload
package config
