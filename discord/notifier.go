// Package discord posts match lifecycle notifications to a Discord
// channel through an incoming webhook.
package discord

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen  = 0x00ff00
	colorBlue   = 0x0099ff
	colorOrange = 0xffaa00
	colorYellow = 0xffff00
)

// Notifier executes a Discord webhook. A nil Notifier is valid and
// drops every notification, so callers don't have to branch on whether
// notifications are configured.
type Notifier struct {
	session   *discordgo.Session
	webhookID string
	token     string
}

// NewNotifier parses an incoming webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>. An empty URL yields a
// nil notifier.
func NewNotifier(webhookURL string) (*Notifier, error) {
	if webhookURL == "" {
		return nil, nil
	}

	parts := strings.Split(strings.TrimRight(webhookURL, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed discord webhook url")
	}
	webhookID := parts[len(parts)-2]
	token := parts[len(parts)-1]

	// Webhook execution needs no bot token; the session only provides
	// the REST plumbing.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &Notifier{
		session:   session,
		webhookID: webhookID,
		token:     token,
	}, nil
}

func (n *Notifier) send(embed *discordgo.MessageEmbed) {
	if n == nil {
		return
	}
	_, err := n.session.WebhookExecute(n.webhookID, n.token, false, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		slog.Error("discord notification failed", slog.Any("error", err))
	}
}

func (n *Notifier) MatchStarted(matchID, team1Name, team2Name string, mapPool []string) {
	n.send(&discordgo.MessageEmbed{
		Title:       "🏁 Match Started",
		Description: fmt.Sprintf("**%s** vs **%s**", team1Name, team2Name),
		Color:       colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Match ID", Value: matchID, Inline: true},
			{Name: "Map Pool", Value: strings.Join(mapPool, ", "), Inline: false},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (n *Notifier) MatchFinished(matchID, team1Name, team2Name string, team1Score, team2Score int, winnerName string) {
	n.send(&discordgo.MessageEmbed{
		Title:       "🏆 Match Finished",
		Description: fmt.Sprintf("**%s** %d - %d **%s**", team1Name, team1Score, team2Score, team2Name),
		Color:       colorBlue,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Match ID", Value: matchID, Inline: true},
			{Name: "Winner", Value: winnerName, Inline: true},
			{Name: "Final Score", Value: fmt.Sprintf("%d - %d", team1Score, team2Score), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (n *Notifier) MapFinished(matchID, mapName string, mapNumber int, team1Name, team2Name string, team1Score, team2Score int, winnerName string) {
	n.send(&discordgo.MessageEmbed{
		Title:       fmt.Sprintf("📍 Map %d Finished", mapNumber),
		Description: fmt.Sprintf("**%s**", mapName),
		Color:       colorOrange,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Match ID", Value: matchID, Inline: true},
			{Name: "Winner", Value: winnerName, Inline: true},
			{Name: "Score", Value: fmt.Sprintf("%s %d - %d %s", team1Name, team1Score, team2Score, team2Name), Inline: false},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (n *Notifier) QuickVetoStarted(matchID string, mapPool []string) {
	n.send(&discordgo.MessageEmbed{
		Title:       "⚡ Quick Veto Started",
		Description: "A new veto session has started",
		Color:       colorYellow,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Match ID", Value: matchID, Inline: true},
			{Name: "Map Pool", Value: strings.Join(mapPool, ", "), Inline: false},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
