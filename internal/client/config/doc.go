// Package config loads runtime configuration for the CMS admin console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: API_URL, SESSION_DB, REQUEST_TIMEOUT, optionally from a
//     .env file in the working directory.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-u string   API base URL
//	-s string   session database file
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "api_base_url": "http://localhost:5000/api",
//	  "session_db_path": "session.db",
//	  "request_timeout": "15s"
//	}
package config
