// Package backup implements on-demand guild archival: collecting guild
// metadata, members and channel history, and turning them into a snapshot
// that can be serialized and stored locally.
package backup

import (
	"fmt"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
)

// Snapshot is the full exported state of a guild. Its JSON layout is the
// archive format: a guild info section, a member map keyed by user ID, and a
// channel map keyed by channel name.
type Snapshot struct {
	Info     GuildInfo            `json:"info"`
	Members  map[string]Member    `json:"members"`
	Channels map[string][]Message `json:"channels"`
}

// GuildInfo is the archived projection of a guild.
type GuildInfo struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	OwnerID         string      `json:"owner_id"`
	IconURL         string      `json:"icon_url,omitempty"`
	BannerURL       string      `json:"banner_url,omitempty"`
	CreatedAt       string      `json:"created_at"`
	MemberCount     uint64      `json:"member_count,omitempty"`
	PreferredLocale string      `json:"preferred_locale,omitempty"`
	Features        []string    `json:"features,omitempty"`
	Roles           []RoleInfo  `json:"roles"`
	Emojis          []EmojiInfo `json:"emojis"`
}

// RoleInfo is the archived projection of a guild role.
type RoleInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Managed  bool   `json:"managed"`
}

// EmojiInfo is the archived projection of a custom emoji.
type EmojiInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Animated bool   `json:"animated"`
}

// Member is the archived projection of a guild member.
type Member struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
	JoinedAt    string   `json:"joined_at,omitempty"`
	Bot         bool     `json:"bot"`
}

// Author identifies who wrote an archived message.
type Author struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Bot  bool   `json:"bot"`
}

// Reaction is an emoji reaction with its count.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// Message is the archived projection of a channel message.
type Message struct {
	ID          string          `json:"id"`
	Content     string          `json:"content"`
	Author      Author          `json:"author"`
	CreatedAt   string          `json:"created_at"`
	Attachments []string        `json:"attachments"`
	Embeds      []discord.Embed `json:"embeds"`
	Reactions   []Reaction      `json:"reactions"`
	Pinned      bool            `json:"pinned"`
	Type        string          `json:"type"`
}

// NewGuildInfo builds the archived projection of a guild.
func NewGuildInfo(g *discord.Guild) GuildInfo {
	info := GuildInfo{
		ID:              g.ID.String(),
		Name:            g.Name,
		Description:     g.Description,
		OwnerID:         g.OwnerID.String(),
		IconURL:         g.IconURL(),
		BannerURL:       g.BannerURL(),
		CreatedAt:       g.ID.Time().UTC().Format(time.RFC3339),
		MemberCount:     g.ApproximateMembers,
		PreferredLocale: g.PreferredLocale,
		Roles:           make([]RoleInfo, 0, len(g.Roles)),
		Emojis:          make([]EmojiInfo, 0, len(g.Emojis)),
	}

	for _, f := range g.Features {
		info.Features = append(info.Features, string(f))
	}

	for _, r := range g.Roles {
		info.Roles = append(info.Roles, RoleInfo{
			ID:       r.ID.String(),
			Name:     r.Name,
			Position: r.Position,
			Managed:  r.Managed,
		})
	}

	for _, e := range g.Emojis {
		info.Emojis = append(info.Emojis, EmojiInfo{
			ID:       e.ID.String(),
			Name:     e.Name,
			Animated: e.Animated,
		})
	}

	return info
}

// NewMember builds the archived projection of a member. The role list holds
// role names, @everyone first, in the member's role order.
func NewMember(m discord.Member, roleNames map[discord.RoleID]string, everyoneName string) Member {
	roles := make([]string, 0, len(m.RoleIDs)+1)
	roles = append(roles, everyoneName)
	for _, id := range m.RoleIDs {
		if name, ok := roleNames[id]; ok {
			roles = append(roles, name)
		}
	}

	joined := ""
	if m.Joined.IsValid() {
		joined = m.Joined.Time().UTC().Format(time.RFC3339)
	}

	return Member{
		Name:        m.User.Username,
		DisplayName: memberDisplayName(m),
		Roles:       roles,
		JoinedAt:    joined,
		Bot:         m.User.Bot,
	}
}

func memberDisplayName(m discord.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.DisplayName != "" {
		return m.User.DisplayName
	}

	return m.User.Username
}

// NewMessage builds the archived projection of a message.
func NewMessage(msg discord.Message) Message {
	attachments := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, a.URL)
	}

	reactions := make([]Reaction, 0, len(msg.Reactions))
	for _, r := range msg.Reactions {
		reactions = append(reactions, Reaction{
			Emoji: emojiString(r.Emoji),
			Count: r.Count,
		})
	}

	embeds := msg.Embeds
	if embeds == nil {
		embeds = []discord.Embed{}
	}

	return Message{
		ID:          msg.ID.String(),
		Content:     msg.Content,
		Author: Author{
			Name: msg.Author.Username,
			ID:   msg.Author.ID.String(),
			Bot:  msg.Author.Bot,
		},
		CreatedAt:   msg.Timestamp.Time().UTC().Format(time.RFC3339),
		Attachments: attachments,
		Embeds:      embeds,
		Reactions:   reactions,
		Pinned:      msg.Pinned,
		Type:        messageTypeName(msg.Type),
	}
}

// emojiString renders an emoji the way it appears in message content: the
// raw character for unicode emoji, the <:name:id> mention form for custom
// ones.
func emojiString(e discord.Emoji) string {
	if !e.ID.IsValid() {
		return e.Name
	}
	if e.Animated {
		return fmt.Sprintf("<a:%s:%s>", e.Name, e.ID.String())
	}

	return fmt.Sprintf("<:%s:%s>", e.Name, e.ID.String())
}

func messageTypeName(t discord.MessageType) string {
	switch t {
	case discord.DefaultMessage:
		return "default"
	case discord.ChannelPinnedMessage:
		return "channel_pinned_message"
	case discord.GuildMemberJoinMessage:
		return "guild_member_join"
	case discord.ThreadCreatedMessage:
		return "thread_created"
	case discord.InlinedReplyMessage:
		return "reply"
	case discord.ThreadStarterMessage:
		return "thread_starter_message"
	default:
		return fmt.Sprintf("type_%d", t)
	}
}
