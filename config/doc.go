// Package config loads eventmonitor configuration.
//
// Values are layered in this order, later layers winning:
//   - built-in defaults (see Default)
//   - an optional YAML file, whose contents may reference ${VAR}
//     (see ExpandEnvStrict)
//   - environment variables (INSTANCE_ID, AZ_NAME, PORT, ...)
//
// The merged result is checked by Config.Validate before it is returned.
package config
