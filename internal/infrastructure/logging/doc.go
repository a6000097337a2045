// Package logging provides structured logging for homecast.
//
// It wraps Go's standard log/slog package so every component logs with
// the same handler, level and default fields (service, version).
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("server started", "port", 8420)
//	logger.Error("snapshot reload failed", "error", err)
//
// Never log MQTT passwords or Hue usernames.
package logging
