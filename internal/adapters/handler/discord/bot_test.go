package discord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tengise174/poll-bot-button/internal/adapters/repository/memory"
	"github.com/tengise174/poll-bot-button/internal/core/domain"
	"github.com/tengise174/poll-bot-button/internal/core/ports"
	"github.com/tengise174/poll-bot-button/internal/core/services"
	"github.com/tengise174/poll-bot-button/internal/metrics"
)

type fakeResponder struct {
	messageID  string
	respondErr error
	responses  []*discordgo.InteractionResponse
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	if f.respondErr != nil {
		return f.respondErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) InteractionResponse(_ *discordgo.Interaction, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: f.messageID}, nil
}

func (f *fakeResponder) last(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	require.NotEmpty(t, f.responses)
	return f.responses[len(f.responses)-1]
}

func newTestBot(t *testing.T) (*Bot, ports.PollService) {
	t.Helper()
	repo := memory.NewPollRepository()
	m := metrics.New(prometheus.NewRegistry())
	polls := services.NewPollService(repo, m)
	votes := services.NewVoteService(repo, m, nil, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBot(polls, votes, "", logger), polls
}

func commandInteraction(id, question, options string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   id,
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: commandName,
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: questionOption, Type: discordgo.ApplicationCommandOptionString, Value: question},
				{Name: optionsOption, Type: discordgo.ApplicationCommandOptionString, Value: options},
			},
		},
	}
}

func buttonInteraction(messageID, customID, userID string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:   "button-" + userID,
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
		Member: &discordgo.Member{User: &discordgo.User{ID: userID}},
		Message: &discordgo.Message{
			ID:         messageID,
			Components: voteButtons("cmd-1", []string{"pizza", "tacos", "sushi"}),
		},
	}
}

func isEphemeral(resp *discordgo.InteractionResponse) bool {
	return resp.Type == discordgo.InteractionResponseChannelMessageWithSource &&
		resp.Data != nil && resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0
}

func createLunchPoll(t *testing.T, bot *Bot) {
	t.Helper()
	r := &fakeResponder{messageID: "msg-1"}
	bot.handleInteraction(context.Background(), r, commandInteraction("cmd-1", "Lunch?", "pizza, tacos, sushi"))
	require.Len(t, r.responses, 1)
}

func TestCommandsShape(t *testing.T) {
	bot, _ := newTestBot(t)

	cmds := bot.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "poll", cmds[0].Name)
	require.Len(t, cmds[0].Options, 2)
	for _, opt := range cmds[0].Options {
		assert.True(t, opt.Required)
		assert.Equal(t, discordgo.ApplicationCommandOptionString, opt.Type)
	}
}

func TestCreatePollCommand(t *testing.T) {
	bot, polls := newTestBot(t)
	r := &fakeResponder{messageID: "msg-1"}

	bot.handleInteraction(context.Background(), r, commandInteraction("cmd-1", "Lunch?", "pizza, tacos, sushi"))

	resp := r.last(t)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "Lunch?", resp.Data.Embeds[0].Title)
	assert.Equal(t, votePrompt, resp.Data.Embeds[0].Description)
	assert.Equal(t, embedColor, resp.Data.Embeds[0].Color)

	require.Len(t, resp.Data.Components, 1)
	row, ok := resp.Data.Components[0].(discordgo.ActionsRow)
	require.True(t, ok)
	require.Len(t, row.Components, 3)
	second := row.Components[1].(discordgo.Button)
	assert.Equal(t, "tacos", second.Label)
	assert.Equal(t, "poll_cmd-1_1", second.CustomID)
	assert.Equal(t, discordgo.PrimaryButton, second.Style)

	res, err := polls.Results(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Len(t, res.Lines, 3)

	poll, err := polls.Lookup(context.Background(), domain.OriginDiscord, "msg-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OriginDiscord, poll.Origin)
}

func TestCreatePollCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		options string
		want    string
	}{
		{name: "one option", options: "only", want: "Please provide between 2 and 5 options."},
		{name: "six options", options: "a,b,c,d,e,f", want: "Please provide between 2 and 5 options."},
		{name: "no options", options: "", want: "Please provide both a question and options."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bot, polls := newTestBot(t)
			r := &fakeResponder{messageID: "msg-1"}

			bot.handleInteraction(context.Background(), r, commandInteraction("cmd-1", "Q", tt.options))

			resp := r.last(t)
			assert.True(t, isEphemeral(resp))
			assert.Equal(t, tt.want, resp.Data.Content)

			_, err := polls.GetPoll(context.Background(), "msg-1")
			assert.ErrorIs(t, err, domain.ErrPollNotFound)
		})
	}
}

func TestCreatePollRespondFailureDoesNotRegister(t *testing.T) {
	bot, polls := newTestBot(t)
	r := &fakeResponder{messageID: "msg-1", respondErr: errors.New("gateway down")}

	bot.handleInteraction(context.Background(), r, commandInteraction("cmd-1", "Q", "a,b"))

	_, err := polls.GetPoll(context.Background(), "msg-1")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestButtonVote(t *testing.T) {
	bot, _ := newTestBot(t)
	createLunchPoll(t, bot)

	r := &fakeResponder{}
	i := buttonInteraction("msg-1", "poll_cmd-1_1", "user1")
	bot.handleInteraction(context.Background(), r, i)

	resp := r.last(t)
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, resp.Type)
	require.Len(t, resp.Data.Embeds, 1)
	assert.Equal(t, "Lunch?", resp.Data.Embeds[0].Title)
	assert.Equal(t, "Results:\npizza: 0 votes\ntacos: 1 vote\nsushi: 0 votes", resp.Data.Embeds[0].Description)
	assert.Equal(t, i.Message.Components, resp.Data.Components)
}

func TestButtonErrors(t *testing.T) {
	bot, _ := newTestBot(t)
	createLunchPoll(t, bot)

	r := &fakeResponder{}
	bot.handleInteraction(context.Background(), r, buttonInteraction("msg-1", "poll_cmd-1_0", "user1"))
	require.Equal(t, discordgo.InteractionResponseUpdateMessage, r.last(t).Type)

	tests := []struct {
		name     string
		message  string
		customID string
		user     string
		want     string
	}{
		{name: "second vote", message: "msg-1", customID: "poll_cmd-1_2", user: "user1", want: "You have already voted."},
		{name: "already voted wins over bad index", message: "msg-1", customID: "poll_cmd-1_x", user: "user1", want: "You have already voted."},
		{name: "bad index", message: "msg-1", customID: "poll_cmd-1_x", user: "user2", want: "Invalid option selected."},
		{name: "out of range", message: "msg-1", customID: "poll_cmd-1_9", user: "user2", want: "Invalid option selected."},
		{name: "unknown poll", message: "msg-404", customID: "poll_cmd-1_0", user: "user2", want: "Poll not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeResponder{}
			bot.handleInteraction(context.Background(), r, buttonInteraction(tt.message, tt.customID, tt.user))

			resp := r.last(t)
			assert.True(t, isEphemeral(resp))
			assert.Equal(t, tt.want, resp.Data.Content)
		})
	}
}

func TestButtonIgnoresForeignComponents(t *testing.T) {
	bot, _ := newTestBot(t)
	createLunchPoll(t, bot)

	r := &fakeResponder{}
	bot.handleInteraction(context.Background(), r, buttonInteraction("msg-1", "other_cmd-1_0", "user1"))
	assert.Empty(t, r.responses)
}

func TestButtonDirectMessageUser(t *testing.T) {
	bot, _ := newTestBot(t)
	createLunchPoll(t, bot)

	i := buttonInteraction("msg-1", "poll_cmd-1_2", "")
	i.Member = nil
	i.User = &discordgo.User{ID: "dm-user"}

	r := &fakeResponder{}
	bot.handleInteraction(context.Background(), r, i)
	assert.Equal(t, discordgo.InteractionResponseUpdateMessage, r.last(t).Type)
}

func TestMessageDeleteRemovesPoll(t *testing.T) {
	bot, polls := newTestBot(t)
	createLunchPoll(t, bot)

	bot.onMessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "msg-1"}})

	_, err := polls.GetPoll(context.Background(), "msg-1")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	// Deleting an unrelated message is a no-op.
	bot.onMessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "msg-2"}})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "éé", truncate("ééé", 2))
}

func TestButtonVoterScopedToDiscord(t *testing.T) {
	bot, polls := newTestBot(t)
	createLunchPoll(t, bot)

	r := &fakeResponder{}
	bot.handleInteraction(context.Background(), r, buttonInteraction("msg-1", "poll_cmd-1_0", "user1"))
	require.Equal(t, discordgo.InteractionResponseUpdateMessage, r.last(t).Type)

	poll, err := polls.GetPoll(context.Background(), "msg-1")
	require.NoError(t, err)
	assert.True(t, poll.HasVoted("discord:user1"))
	assert.False(t, poll.HasVoted("user1"))
	assert.False(t, poll.HasVoted("api:user1"))
}

func TestButtonIgnoresAPIPolls(t *testing.T) {
	bot, polls := newTestBot(t)
	_, err := polls.Create(context.Background(), ports.CreatePollInput{
		ID:         "msg-api",
		Question:   "Q",
		RawOptions: "a,b",
		Origin:     domain.OriginAPI,
		CreatedBy:  "api:alice",
	})
	require.NoError(t, err)

	r := &fakeResponder{}
	bot.handleInteraction(context.Background(), r, buttonInteraction("msg-api", "poll_cmd-1_0", "user1"))
	assert.Equal(t, "Poll not found.", r.last(t).Data.Content)

	bot.onMessageDelete(nil, &discordgo.MessageDelete{Message: &discordgo.Message{ID: "msg-api"}})
	_, err = polls.GetPoll(context.Background(), "msg-api")
	assert.NoError(t, err)
}
