// Package memory provides in-process implementations of the driven ports.
// They back tests and the "memory" store and catalog backends, and hold
// nothing across process restarts.
package memory
