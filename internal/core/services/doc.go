// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services hold no mutable state after construction and are safe
// for concurrent use when their driven ports are.
package services
