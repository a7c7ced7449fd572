// Package config provides the portal configuration model, YAML loading with
// environment variable substitution, validation, and file watching for
// hot-reload of the table rendering settings.
//
// Load and validate a configuration file:
//
//	cfg, err := config.LoadConfig("configs/statportal.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// Values may reference the environment with ${VAR} or ${VAR:-default}. A
// literal dollar sign is written as $$.
//
// Watch the file and apply changes to the table section without restart:
//
//	w, err := config.NewWatcher(path, func(cfg *config.PortalConfig) {
//	    renderer.Update(cfg.Table)
//	}, config.WithLogger(logger))
package config
