// Package config provides configuration structures and utilities for phishscan.
// It defines runtime options for URL checks, the HTTP service, report
// generation, and history storage. Values are layered from defaults, an
// optional YAML file, environment variables, and CLI flags, in that order.
package config
