// Package config assembles runtime configuration for the rosterctl CLI from
// viper-bound flags, environment variables and the optional config file.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:8080"

// ServerURL returns the base URL of the school-management service with any
// trailing slash removed.
func ServerURL() string {
	url := viper.GetString("server")
	if url == "" {
		url = defaultServerURL
	}
	return strings.TrimRight(url, "/")
}
