package domain

import "time"

// VoiceChannel tracks one provisioned secret voice channel. A row exists iff
// the platform channel is believed to exist; LastActivity never decreases
// while the row is live.
type VoiceChannel struct {
	ChannelID    string    `json:"channelID"`
	OwnerID      string    `json:"ownerID"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}
