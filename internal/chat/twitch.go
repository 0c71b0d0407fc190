package chat

import (
	"context"
	"log/slog"
	"strings"

	twitchirc "github.com/gempir/go-twitch-irc/v4"
)

// TwitchConfig holds Twitch IRC connection settings
type TwitchConfig struct {
	Username string
	// Token is the OAuth token, with or without the "oauth:" prefix
	Token   string
	Channel string
}

// Twitch connects the dispatcher to a Twitch channel over IRC
type Twitch struct {
	client  *twitchirc.Client
	channel string
	logger  *slog.Logger
}

// Ensure Twitch implements Speaker
var _ Speaker = (*Twitch)(nil)

// NewTwitch creates a Twitch chat adapter. onMessage receives every
// non-self message in the channel.
func NewTwitch(cfg TwitchConfig, logger *slog.Logger, onMessage func(Message)) *Twitch {
	token := cfg.Token
	if !strings.HasPrefix(token, "oauth:") {
		token = "oauth:" + token
	}
	client := twitchirc.NewClient(cfg.Username, token)

	t := &Twitch{
		client:  client,
		channel: cfg.Channel,
		logger:  logger,
	}

	client.OnPrivateMessage(func(m twitchirc.PrivateMessage) {
		if m.User.Name == cfg.Username {
			return
		}
		onMessage(Message{
			Handle: m.User.Name,
			Text:   m.Message,
			IsMod:  isPrivileged(m),
		})
	})

	client.OnConnect(func() {
		logger.Info("connected to Twitch IRC", slog.String("channel", cfg.Channel))
	})

	client.Join(cfg.Channel)
	return t
}

// Connect opens the IRC connection and blocks until it closes
func (t *Twitch) Connect() error {
	return t.client.Connect()
}

// Disconnect closes the IRC connection
func (t *Twitch) Disconnect(ctx context.Context) error {
	return t.client.Disconnect()
}

// Say sends a public message to the channel
func (t *Twitch) Say(message string) {
	t.client.Say(t.channel, message)
}

func isPrivileged(m twitchirc.PrivateMessage) bool {
	if m.User.Badges["moderator"] > 0 || m.User.Badges["broadcaster"] > 0 {
		return true
	}
	return m.Tags["mod"] == "1"
}
