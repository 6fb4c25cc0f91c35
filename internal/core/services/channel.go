package services

import (
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
)

// Channel is a last-write-wins holder for one line of user-facing text.
type Channel struct {
	mu      sync.RWMutex
	message string
}

// Set replaces the current message.
func (c *Channel) Set(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = message
}

// Clear empties the channel.
func (c *Channel) Clear() {
	c.Set("")
}

// Current returns the message, or "" when empty.
func (c *Channel) Current() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.message
}

// ErrorChannel holds the last user-facing error for upload and clear failures.
// It is independent of the success status channel.
type ErrorChannel struct {
	Channel
}

// NewErrorChannel creates an empty error channel.
func NewErrorChannel() *ErrorChannel {
	return &ErrorChannel{}
}

// Report normalises err into its display text and replaces the current message.
func (c *ErrorChannel) Report(err error) {
	if err == nil {
		return
	}
	c.Set(domain.DisplayMessage(err))
}
