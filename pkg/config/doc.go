// Package config provides configuration management for formzone.
//
// This package handles loading, validating, and managing formzone.yaml with
// environment variable overrides. Per-project validation rules live in the
// project's json/project_config.json and are handled by package project;
// this file only says where that project is and how the services around the
// engine behave.
//
// # Configuration Loading
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("formzone.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("formzone.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention FORMZONE_SECTION_FIELD:
//
//   - FORMZONE_PROJECT_CONFIG_FOLDER overrides project.config_folder
//   - FORMZONE_HISTORY_DRIVER overrides history.driver
//   - FORMZONE_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
// Values are applied in this order, later overriding earlier:
//
//  1. Default values
//  2. YAML file
//  3. Environment variables
//
// # Example
//
//	project:
//	  config_folder: /srv/projects/herd-survey
//	  output_csv: /srv/batches/2024-05/output.csv
//	history:
//	  enabled: true
//	  driver: sqlite
//	  path: data/history.db
//	  retention_days: 30
//	telemetry:
//	  logging:
//	    level: info
//	    output: logs/formzone.log
//	    redact_pii: true
//	  metrics:
//	    enabled: true
package config
