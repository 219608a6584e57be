// Package server holds the HTTP server configuration and constants.
//
// While the main application entry point handles the server startup, this package
// defines the configuration structures for server settings, such as the listen
// port and report sampling defaults.
//
// # Configuration
//
// The Config struct defines the HTTP port, API key, and the default sample
// sizes used when a comparison request does not specify its own.
//
// # Usage
//
// This package is primarily used by the core/config package to embed server settings
// and by the serve command to start the HTTP listener.
package server
