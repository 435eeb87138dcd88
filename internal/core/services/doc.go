// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Apart from the shared logger they only
// reach the outside world through driven ports.
package services
