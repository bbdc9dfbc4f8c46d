// Package logging provides structured logging for the agent.
//
// It wraps log/slog with JSON or text output, level filtering and default
// service/version fields.
//
// Logging is configured via the logging section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	conn := logger.Component("connector")
//	conn.Info("connected", "broker", url)
//
// Never log broker passwords or InfluxDB tokens.
package logging
