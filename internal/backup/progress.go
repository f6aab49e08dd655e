package backup

import (
	"fmt"
	"strconv"
	"time"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"go.uber.org/zap"

	"github.com/Raikerian/go-discord-backup/pkg/util"
)

// Status embed colors.
const (
	colorRunning discord.Color = 0x3498DB
	colorSuccess discord.Color = 0x2ECC71
	colorFailure discord.Color = 0xE74C3C
)

// Status embed field names, fixed so the embed reads the same across a run.
const (
	fieldChannels = "Number of backed up channels:"
	fieldMessages = "Number of backed up messages (total):"
	fieldUpdate   = "Latest update:"
	fieldPath     = "Local path:"
)

// MessageEditor is the slice of the Discord client needed to edit the status
// message. *session.Session satisfies it.
type MessageEditor interface {
	EditMessageComplex(channelID discord.ChannelID, messageID discord.MessageID, data api.EditMessageData) (*discord.Message, error)
}

// StartEmbed is the embed a backup command responds with before the run
// starts producing progress.
func StartEmbed() discord.Embed {
	return statusEmbed(colorRunning, 0, 0, 0, "Preparing...")
}

func statusEmbed(color discord.Color, done, total, messages int, update string) discord.Embed {
	return discord.Embed{
		Title: "Backup",
		Color: color,
		Fields: []discord.EmbedField{
			{Name: fieldChannels, Value: fmt.Sprintf("%d/%d", done, total)},
			{Name: fieldMessages, Value: strconv.Itoa(messages)},
			{Name: fieldUpdate, Value: update},
		},
	}
}

// Reporter renders run progress onto a single status message, editing the
// embed in place. Intermediate updates are throttled so frequent page fetches
// do not hammer the message edit endpoint; terminal updates always go out.
type Reporter struct {
	editor    MessageEditor
	channelID discord.ChannelID
	messageID discord.MessageID
	gate      *util.Gate
	logger    *zap.Logger
}

// NewReporter creates a reporter for the given status message.
func NewReporter(editor MessageEditor, channelID discord.ChannelID, messageID discord.MessageID, interval time.Duration, logger *zap.Logger) *Reporter {
	return &Reporter{
		editor:    editor,
		channelID: channelID,
		messageID: messageID,
		gate:      util.NewGate(interval),
		logger:    logger.Named("progress"),
	}
}

// Progress publishes an intermediate update, subject to throttling.
func (r *Reporter) Progress(done, total, messages int, update string) {
	if !r.gate.Allow() {
		return
	}
	r.edit(statusEmbed(colorRunning, done, total, messages, update))
}

// Success publishes the terminal success state with the archive location.
func (r *Reporter) Success(total, messages int, path, size string) {
	r.gate.Force()
	embed := statusEmbed(colorSuccess, total, total, messages, "Done! Archive size: "+size)
	embed.Fields = append(embed.Fields, discord.EmbedField{
		Name:  fieldPath,
		Value: "`" + path + "`",
	})
	r.edit(embed)
}

// Failure publishes the terminal failure state.
func (r *Reporter) Failure(done, total, messages int, reason string) {
	r.gate.Force()
	r.edit(statusEmbed(colorFailure, done, total, messages, "Failed: "+reason))
}

func (r *Reporter) edit(embed discord.Embed) {
	_, err := r.editor.EditMessageComplex(r.channelID, r.messageID, api.EditMessageData{
		Embeds: &[]discord.Embed{embed},
	})
	if err != nil {
		r.logger.Warn("Failed to update status message",
			zap.Error(err),
			zap.Stringer("messageID", r.messageID),
		)
	}
}
