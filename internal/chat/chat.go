// Package chat defines the transport seam between the game core and a
// chat platform. The dispatcher talks to these interfaces; adapters for
// Twitch, StreamElements whispers, and a local console live alongside.
package chat

import "context"

// Message is an inbound chat line
type Message struct {
	// Handle is the sender's username as received from the transport
	Handle string
	// Text is the raw message text
	Text string
	// IsMod marks moderators/broadcasters for privileged commands
	IsMod bool
}

// Speaker sends a public message to the channel
type Speaker interface {
	Say(message string)
}

// Whisperer delivers a private out-of-band notification
type Whisperer interface {
	Whisper(ctx context.Context, handle, message string) error
}
