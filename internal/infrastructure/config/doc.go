// Package config handles loading and validating homecast configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with HOMECAST_* environment variables
//   - Validation of required fields
//
// MQTT and Hue credentials should be supplied through the environment
// rather than the config file.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
