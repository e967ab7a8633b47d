// Package config loads the relay configuration from an optional YAML file,
// an optional dotenv file and the process environment.
package config
