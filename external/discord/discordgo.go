package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bwmarrin/discordgo"
	discordpkg "github.com/foxseedlab/modconsole/internal/discord"
)

var ErrNotConnected = errors.New("discord session is not initialized")

// Client posts to Discord over REST only; notices never need the gateway.
type Client struct {
	session    *discordgo.Session
	token      string
	httpClient *http.Client
	botUserID  string
}

func NewClient(token string) discordpkg.Client {
	return &Client{token: token}
}

func (c *Client) Connect(ctx context.Context) error {
	s, err := discordgo.New("Bot " + c.token)
	if err != nil {
		return err
	}
	if c.httpClient != nil {
		s.Client = c.httpClient
	}
	u, err := s.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to verify discord bot token: %w", err)
	}
	c.session = s
	c.botUserID = u.ID
	slog.Info("discord client ready", "bot_user_id", u.ID)
	return nil
}

func (c *Client) Close() error {
	if c.session != nil {
		return c.session.Close()
	}
	return nil
}

func (c *Client) SendChannelMessage(channelID, content string) error {
	if c.session == nil {
		return ErrNotConnected
	}
	_, err := c.session.ChannelMessageSend(channelID, content)
	if isRESTNotFound(err) {
		return fmt.Errorf("discord channel %s not found: %w", channelID, err)
	}
	return err
}

func isRESTNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Response == nil {
		return false
	}
	return restErr.Response.StatusCode == http.StatusNotFound
}
