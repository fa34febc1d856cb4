// Package config provides configuration management for the routing
// engine. Configuration is loaded from YAML files with support for
// ${VAR} and ${VAR:-default} environment variable substitution, then
// validated before use.
//
// Route tables are not part of the configuration: routes are declared
// in code and the matcher is sealed at startup, so there is no hot
// reload surface.
package config
