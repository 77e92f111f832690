// Package config provides configuration management for the session reports.
// It loads settings from defaults, a YAML file and environment variables,
// validates them and resolves the fixed output file locations.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Command-line flags (applied by the caller before Validate)
//	2. Environment variables
//	3. YAML file (sessionreports.yaml or configs/sessionreports.yaml)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SESSIONCLI_<SECTION>_<FIELD>:
//
//	SESSIONCLI_INPUT_WORKBOOK=GC_Task_Sheet.xlsx
//	SESSIONCLI_REPORTS_EXPERIMENT=10000
//	SESSIONCLI_REPORTS_DATE_FROM=2021-05-03
//	SESSIONCLI_CHART_VIEWER=none
//	SESSIONCLI_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	cfg.Input.Path = *input
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//	paths, err := config.ResolvePaths(cfg)
package config
