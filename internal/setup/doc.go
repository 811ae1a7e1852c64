// Package setup resolves where rigbuilder keeps its state and which
// backends it talks to. Configuration is layered: built-in defaults, an
// optional YAML file, a .env file, then RIGBUILDER_* environment variables.
//
// This package is essentially a collection of loaders and constants, and is
// therefore the only package that is allowed to call a global logger.
package setup
