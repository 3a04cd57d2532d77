// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The core depends on these contracts, never on
// concrete adapters.
package driven
