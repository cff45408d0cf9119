// Package cliapi runs services without the HTTP server: JSONAPI executes a
// script of JSON commands and CommandLineAPI builds such a script from
// command-line flags. Both report one JSON result line per command.
package cliapi
