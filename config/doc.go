// Package config loads and validates davgate configuration.
//
// Configuration sources are merged with the following precedence, highest
// first: command-line flags, environment variables (DAVGATE_ prefix, dots
// replaced by underscores), config files (later files override earlier
// ones), built-in defaults.
//
// Example config file:
//
//	server:
//	  port: 8080
//	  max_upload_size: 524288000
//	scope:
//	  path: /files
//	  root: /srv/dav
//	  segment: ""
//	reaper:
//	  enabled: true
//	  max_age: 24h
//	rate_limit:
//	  enabled: false
//	log:
//	  level: info
//	  format: text
package config
