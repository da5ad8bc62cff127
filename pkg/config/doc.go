// Package config provides configuration management for reqgraph.
//
// This package loads, validates and manages configuration from YAML files
// with environment variable overrides.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("reqgraph.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("reqgraph.yaml")
//
// # Environment Variable Overrides
//
//   - REQGRAPH_GAME_ROOT overrides game_root
//   - REQGRAPH_WORKERS overrides workers
//   - REQGRAPH_STORAGE_PATH, REQGRAPH_STORAGE_DRIVER override storage
//   - REQGRAPH_WATCH_SCHEDULE overrides watch.schedule
//   - REQGRAPH_LOG_LEVEL, REQGRAPH_LOG_FORMAT override telemetry.logging
//   - REQGRAPH_METRICS_ENABLED overrides telemetry.metrics.enabled
//
// # Configuration Precedence
//
//  1. Default values (DefaultConfig)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	game_root: "/games/stellaris"
//	collections:
//	  - name: civics
//	    paths: ["common/governments/civics/*.txt"]
//	  - name: mod_civics
//	    builtin: civics
//	    paths: ["mods/**/civics/*.txt"]
//	    closure: source
//	closure:
//	  facet: civics
//	  link_facets: [origins]
//	storage:
//	  enabled: true
//	  path: "data/reqgraph.db"
//	watch:
//	  schedule: "@every 1h"
package config
