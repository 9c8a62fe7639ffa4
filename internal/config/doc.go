// Package config loads taskpad configuration.
//
// Values are layered in priority order, later layers overriding earlier ones:
//  1. Defaults
//  2. User config file (~/.taskpad/taskpad.toml, or taskpad/taskpad.toml in
//     the OS config directory)
//  3. Project config file (taskpad.toml or .taskpad.toml in the working directory)
//  4. Environment variables (TASKPAD_*)
//  5. Command-line flags
//
// LoadWithSources additionally records which layer each value came from.
package config
