// Package config loads runtime configuration for the strapiclient CLI.
//
// Sources & precedence (later wins)
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables STRAPI_*, plus a .env file in the working
//     directory. Variables already set in the process win over the file.
//  3. Optional JSON or YAML file selected with -c or -config. Files ending in
//     .yaml or .yml are read as YAML, anything else as JSON.
//  4. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the content API
//	-t int      request timeout (seconds)
//	-l string   log level: debug, info, warn, error
//	-d string   kv driver for web storage: sqlite, bbolt, redis, memory
//	-s string   kv data source (file path or redis:// URL)
//
// # File schema
//
// Durations use timex.Duration, so "30s" and integer nanoseconds both work:
//
//	base_url: http://localhost:1337
//	request_timeout: 30s
//	log_level: info
//	store:
//	  cookie:
//	    enabled: true
//	    key: jwt
//	    path: /
//	    max_age: 24h
//	  web_storage:
//	    enabled: true
//	    key: jwt
//	    driver: sqlite
//	    dsn: strapiclient.db
package config
