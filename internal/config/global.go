// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride allows tests to override the config directory.
// Empty means "use the platform default".
var configDirOverride string

// ResetConfigDirOverride clears the test override.
func ResetConfigDirOverride() {
	configDirOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
// Intended for tests; production code should pass LoadOptions instead.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
