// Package bot hosts the Discord front end: it listens for direct messages
// and mentions, enforces the DM allow-list, and hands the message text to
// the relay.
package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Responder turns one user message into chat-sized reply chunks.
type Responder interface {
	HandleMessage(ctx context.Context, userID, text string) []string
}

// Bot owns the Discord session.
type Bot struct {
	session    *discordgo.Session
	responder  Responder
	authorized map[string]bool
	timeout    time.Duration
}

// New creates a Bot but does not open the gateway connection yet.
func New(token string, responder Responder, authorizedUserIDs []string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	authorized := make(map[string]bool, len(authorizedUserIDs))
	for _, id := range authorizedUserIDs {
		if id = strings.TrimSpace(id); id != "" {
			authorized[id] = true
		}
	}

	b := &Bot{
		session:    session,
		responder:  responder,
		authorized: authorized,
		timeout:    2 * time.Minute,
	}
	session.AddHandler(b.onMessage)
	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.Printf("[INFO] logged in as %s", r.User.String())
	})
	return b, nil
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord gateway: %w", err)
	}
	log.Println("[INFO] discord bot is running")
	<-ctx.Done()
	log.Println("[INFO] discord bot shutting down")
	return b.session.Close()
}

// Broadcast sends pre-chunked text to a channel. Delivery stops on the
// first send failure.
func (b *Bot) Broadcast(channelID string, chunks []string) {
	for _, chunk := range chunks {
		if _, err := b.session.ChannelMessageSend(channelID, chunk); err != nil {
			log.Printf("[ERROR] broadcast to channel %s: %v", channelID, err)
			return
		}
	}
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	isDM := m.GuildID == ""
	if isDM {
		// Unauthorized DMs are dropped without a reply.
		if len(b.authorized) > 0 && !b.authorized[m.Author.ID] {
			log.Printf("[WARN] ignoring DM from unauthorized user %s", m.Author.ID)
			return
		}
	} else if !mentionsUser(m.Mentions, s.State.User.ID) {
		return
	}

	text := strings.TrimSpace(stripMention(m.Content, s.State.User.ID))
	if text == "" {
		return
	}
	log.Printf("[INFO] message from %s: %q", m.Author.ID, text)

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		log.Printf("[WARN] typing indicator: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	for _, chunk := range b.responder.HandleMessage(ctx, m.Author.ID, text) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			log.Printf("[ERROR] send reply to %s: %v", m.ChannelID, err)
			return
		}
	}
}

func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

// stripMention removes the bot's own mention token so channel questions read
// the same as DMs.
func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, "<@"+userID+">", "")
	return strings.ReplaceAll(content, "<@!"+userID+">", "")
}
