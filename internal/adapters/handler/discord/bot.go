package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
)

const (
	commandName      = "poll"
	questionOption   = "question"
	optionsOption    = "options"
	customIDPrefix   = "poll"
	customIDSep      = "_"
	embedColor       = 0x00ff00
	votePrompt       = "Press a button to vote!"
	maxButtonLabel   = 80
	interactionLimit = 3 * time.Second
)

// responder is the part of *discordgo.Session the handlers talk back through.
type responder interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponse(i *discordgo.Interaction, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot serves the poll slash command and its vote buttons. Polls are keyed by
// the id of the message that carries the buttons.
type Bot struct {
	polls   ports.PollService
	votes   ports.VoteService
	guildID string
	logger  *slog.Logger
}

func NewBot(polls ports.PollService, votes ports.VoteService, guildID string, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		polls:   polls,
		votes:   votes,
		guildID: guildID,
		logger:  logger,
	}
}

// Open connects a gateway session for token with the bot's handlers attached.
func (b *Bot) Open(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	s.AddHandler(b.onReady)
	s.AddHandler(b.onInteraction)
	s.AddHandler(b.onMessageDelete)

	if err := s.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	return s, nil
}

// Commands returns the application commands the bot registers.
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandName,
			Description: "Create a poll",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        questionOption,
					Description: "The question to ask",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        optionsOption,
					Description: "Comma separated options (e.g. yes,no,busy)",
					Required:    true,
				},
			},
		},
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord session ready", "user", r.User.Username, "guilds", len(r.Guilds))

	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, b.guildID, b.Commands()); err != nil {
		b.logger.Error("failed to register commands", "guild_id", b.guildID, "error", err)
		return
	}
	b.logger.Info("commands registered", "guild_id", b.guildID)
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionLimit)
	defer cancel()
	b.handleInteraction(ctx, s, i.Interaction)
}

func (b *Bot) onMessageDelete(_ *discordgo.Session, m *discordgo.MessageDelete) {
	if m.Message == nil {
		return
	}
	err := b.polls.RemoveOwned(context.Background(), domain.OriginDiscord, m.ID, "")
	switch {
	case err == nil:
		b.logger.Info("poll removed with its message", "poll_id", m.ID)
	case !errors.Is(err, domain.ErrPollNotFound):
		b.logger.Error("failed to remove poll", "poll_id", m.ID, "error", err)
	}
}

func (b *Bot) handleInteraction(ctx context.Context, r responder, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, r, i)
	case discordgo.InteractionMessageComponent:
		b.handleButton(ctx, r, i)
	}
}

func (b *Bot) handleCommand(ctx context.Context, r responder, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()
	if data.Name != commandName {
		return
	}

	var question, rawOptions string
	for _, opt := range data.Options {
		if opt.Type != discordgo.ApplicationCommandOptionString {
			continue
		}
		switch opt.Name {
		case questionOption:
			question = opt.StringValue()
		case optionsOption:
			rawOptions = opt.StringValue()
		}
	}

	poll, err := b.polls.Build(question, rawOptions)
	if err != nil {
		b.replyEphemeral(r, i, userMessage(err))
		return
	}
	poll.Origin = domain.OriginDiscord
	poll.CreatedBy = voterID(i)

	err = r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pollEmbed(poll.Question, votePrompt)},
			Components: voteButtons(i.ID, poll.Options),
		},
	})
	if err != nil {
		b.logger.Error("failed to send poll", "interaction_id", i.ID, "error", err)
		return
	}

	msg, err := r.InteractionResponse(i)
	if err != nil {
		b.logger.Error("failed to fetch poll message", "interaction_id", i.ID, "error", err)
		return
	}

	if _, err := b.polls.Register(ctx, msg.ID, poll); err != nil {
		b.logger.Error("failed to register poll", "poll_id", msg.ID, "error", err)
		return
	}
	b.logger.Info("poll created", "poll_id", msg.ID, "options", len(poll.Options), "guild_id", i.GuildID)
}

func (b *Bot) handleButton(ctx context.Context, r responder, i *discordgo.Interaction) {
	parts := strings.Split(i.MessageComponentData().CustomID, customIDSep)
	if len(parts) < 2 || parts[0] != customIDPrefix || i.Message == nil {
		return
	}

	idx, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		idx = -1
	}

	voter := voterID(i)
	if voter == "" {
		b.replyEphemeral(r, i, "Could not identify who pressed the button.")
		return
	}

	res, err := b.votes.Vote(ctx, ports.VoteInput{
		PollID:      i.Message.ID,
		VoterID:     voter,
		OptionIndex: idx,
		Origin:      domain.OriginDiscord,
	})
	if err != nil {
		b.replyEphemeral(r, i, userMessage(err))
		return
	}

	err = r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pollEmbed(res.Question, res.Text())},
			Components: i.Message.Components,
		},
	})
	if err != nil {
		b.logger.Error("failed to update poll message", "poll_id", i.Message.ID, "error", err)
	}
}

func (b *Bot) replyEphemeral(r responder, i *discordgo.Interaction, content string) {
	err := r.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		b.logger.Error("failed to send reply", "interaction_id", i.ID, "error", err)
	}
}

// voterID is the Discord user behind i, scoped to this host.
func voterID(i *discordgo.Interaction) string {
	var id string
	switch {
	case i.Member != nil && i.Member.User != nil:
		id = i.Member.User.ID
	case i.User != nil:
		id = i.User.ID
	}
	return domain.VoterKey(domain.OriginDiscord, id)
}

func pollEmbed(title, description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       embedColor,
	}
}

// voteButtons lays out one primary button per option in a single row. The
// custom id ends with the option position.
func voteButtons(interactionID string, options []string) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, len(options))
	for idx, label := range options {
		buttons[idx] = discordgo.Button{
			Label:    truncate(label, maxButtonLabel),
			Style:    discordgo.PrimaryButton,
			CustomID: strings.Join([]string{customIDPrefix, interactionID, strconv.Itoa(idx)}, customIDSep),
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingField):
		return "Please provide both a question and options."
	case errors.Is(err, domain.ErrOptionCountOutOfRange):
		return fmt.Sprintf("Please provide between %d and %d options.", domain.MinOptions, domain.MaxOptions)
	case errors.Is(err, domain.ErrPollNotFound):
		return "Poll not found."
	case errors.Is(err, domain.ErrAlreadyVoted):
		return "You have already voted."
	case errors.Is(err, domain.ErrInvalidOption):
		return "Invalid option selected."
	default:
		return "Something went wrong, please try again."
	}
}
