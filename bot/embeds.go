package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/services"
)

const (
	colorSuccess = 0x2ecc71
	colorError   = 0xe74c3c
	colorInfo    = 0x3498db
)

func (b *Bot) replyText(channelID, content string) error {
	_, err := b.session.ChannelMessageSend(channelID, content)
	return err
}

func (b *Bot) replySuccess(channelID, title, description string) error {
	_, err := b.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorSuccess,
	})
	return err
}

func (b *Bot) replyInfo(channelID, title, description string) error {
	_, err := b.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorInfo,
	})
	return err
}

// replyError переводит ошибку сервисного слоя в сообщение пользователю.
// Внутренние ошибки не раскрываются.
func (b *Bot) replyError(channelID string, err error) {
	description := "Something went wrong while processing the command."
	if msg, ok := userFacingMessage(err); ok {
		description = msg
	}
	_, _ = b.session.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       "Error",
		Description: description,
		Color:       colorError,
	})
}

func userFacingMessage(err error) (string, bool) {
	known := []error{
		services.ErrValidationFailed,
		services.ErrTeamNameRequired,
		services.ErrTeamTagRequired,
		services.ErrUserAlreadyInTeam,
		services.ErrUserNotTeamMember,
		services.ErrCannotRemoveCaptain,
		services.ErrCaptainMustTransferFirst,
		services.ErrSelfTransfer,
		services.ErrTransferNotProposed,
		services.ErrTransferExpired,
		services.ErrInviteNotPending,
		services.ErrInviteNotForUser,
		services.ErrInviteExpired,
		services.ErrInviteAlreadyPending,
		services.ErrTeamsNotInSameLeague,
		services.ErrSameTeamChallenge,
		services.ErrMatchAlreadyAccepted,
		services.ErrMatchCancelled,
		services.ErrMapNotPermitted,
		services.ErrResultTied,
		services.ErrTeamNameConflict,
		services.ErrNotAuthorized,
		services.ErrForbiddenOperation,
		services.ErrCaptainActionForbidden,
		services.ErrSelfLeaveForbidden,
		services.ErrUserNotFound,
		services.ErrTeamNotFound,
		services.ErrLeagueNotFound,
		services.ErrGameNotFound,
		services.ErrMapNotFound,
		services.ErrFormatNotFound,
		services.ErrMatchNotFound,
		services.ErrInviteNotFound,
		services.ErrGrantNotFound,
		services.ErrNotFound,
	}
	for _, sentinel := range known {
		if errors.Is(err, sentinel) {
			return sentinel.Error(), true
		}
	}
	return "", false
}

func teamEmbed(team *models.Team) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s [%s]", team.Name, team.Tag),
		Color: colorInfo,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: fmt.Sprintf("%d", team.ID), Inline: true},
		},
	}
	if team.Captain != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Captain", Value: memberLine(*team.Captain), Inline: true,
		})
	}
	if len(team.Members) > 0 {
		lines := make([]string, 0, len(team.Members))
		for _, member := range team.Members {
			lines = append(lines, memberLine(member))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Members", Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

func memberLine(user models.User) string {
	if user.DisplayName != "" {
		return fmt.Sprintf("%s (<@%s>)", user.DisplayName, user.DiscordID)
	}
	return fmt.Sprintf("<@%s>", user.DiscordID)
}
