// Package config defines configuration structures for the reposlurp CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (REPOSLURP_ prefix)
//   - YAML configuration file
//
// Later sources override earlier ones: defaults, file, environment, flags.
//
// # Structure
//
//	type Config struct {
//	    Repo     string
//	    Ref      string
//	    ListPath string
//	    RawPath  string
//	    Dest     string
//	    Workers  int
//	    Manifest string
//	    Progress bool
//	    Bar      bool
//	    HTTP     HTTPConfig
//	}
//
//	type HTTPConfig struct {
//	    Timeout             time.Duration
//	    MaxIdleConnsPerHost int
//	}
package config
