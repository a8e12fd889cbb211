// Package infra holds the technical adapters: MQTT telemetry and
// notification clients, result sink backends and the logging and error
// reporting glue. These packages depend only on the interfaces defined in
// the core packages.
package infra
