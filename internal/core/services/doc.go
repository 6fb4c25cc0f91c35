// Package services implements the driving port interfaces.
// Services contain the core session and chat state machine and
// call out to driven ports (adapters) for remote work.
//
// Services are pure Go with no CGO or external dependencies.
package services
