// Package services implements the driving ports: retrieval, answering,
// ingestion, sessions, usage metrics and settings.
//
// Services depend only on domain types and driven ports. Adapters are
// injected at construction or through Set* methods, so every service can
// run against in-memory fakes.
package services
