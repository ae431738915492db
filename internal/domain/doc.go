// Package domain holds the core types shared across pipeline stages.
//
// Types here carry no behavior beyond construction and basic validation.
// Stages (extract, normalize, handoff, load) depend on this package and
// never on each other's internals.
package domain
