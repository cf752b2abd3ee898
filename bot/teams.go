package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/voltstriker/scrimbot/services"
)

func (b *Bot) handleTeam(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return b.replyText(m.ChannelID, "Usage: "+b.prefix+"team <create|edit|list|info|invite|accept|decline|revoke|invites|leave|remove|transfer|confirm|refuse>")
	}

	sub := strings.ToLower(args[0])
	args = args[1:]
	switch sub {
	case "create":
		return b.teamCreate(ctx, m, args)
	case "edit":
		return b.teamEdit(ctx, m, args)
	case "list":
		return b.teamList(ctx, m)
	case "info":
		return b.teamInfo(ctx, m, args)
	case "invite":
		return b.teamInvite(ctx, m, args)
	case "accept":
		return b.inviteAccept(ctx, m, args)
	case "decline":
		return b.inviteDecline(ctx, m, args)
	case "revoke":
		return b.inviteRevoke(ctx, m, args)
	case "invites":
		return b.teamInvites(ctx, m, args)
	case "leave":
		return b.teamLeave(ctx, m, args)
	case "remove":
		return b.teamRemove(ctx, m, args)
	case "transfer":
		return b.transferPropose(ctx, m, args)
	case "confirm":
		return b.transferConfirm(ctx, m, args)
	case "refuse":
		return b.transferDecline(ctx, m, args)
	default:
		return fmt.Errorf("%w: unknown team subcommand %q", services.ErrValidationFailed, sub)
	}
}

func (b *Bot) teamCreate(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: team create <name> <tag>", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}

	// Тег — последний аргумент, всё остальное — название (может содержать пробелы).
	name := strings.Join(args[:len(args)-1], " ")
	tag := args[len(args)-1]

	team, err := b.teams.CreateTeam(ctx, name, tag, m.GuildID, user.ID)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Team created",
		fmt.Sprintf("**%s [%s]** registered with ID %d. You are the captain.", team.Name, team.Tag, team.ID))
}

func (b *Bot) teamEdit(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("%w: usage: team edit <id> <name> <tag>", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}

	name := strings.Join(args[1:len(args)-1], " ")
	tag := args[len(args)-1]
	team, err := b.teams.EditTeam(ctx, teamID, user.ID, name, tag)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Team updated",
		fmt.Sprintf("Team %d is now **%s [%s]**.", team.ID, team.Name, team.Tag))
}

func (b *Bot) teamList(ctx context.Context, m *discordgo.MessageCreate) error {
	teams, err := b.teams.ListTeams(ctx, m.GuildID)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		return b.replyInfo(m.ChannelID, "Teams", "No teams registered on this server yet.")
	}

	lines := make([]string, 0, len(teams))
	for _, team := range teams {
		lines = append(lines, fmt.Sprintf("`%d` %s [%s]", team.ID, team.Name, team.Tag))
	}
	return b.replyInfo(m.ChannelID, "Teams", strings.Join(lines, "\n"))
}

func (b *Bot) teamInfo(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	team, err := b.teams.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	_, err = b.session.ChannelMessageSendEmbed(m.ChannelID, teamEmbed(team))
	return err
}

func (b *Bot) teamInvite(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: team invite <id> @user", services.ErrValidationFailed)
	}

	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	target, err := b.mentionedUser(ctx, args[1])
	if err != nil {
		return err
	}

	invite, err := b.invites.IssueInvite(ctx, teamID, user.ID, target.ID)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Invite sent",
		fmt.Sprintf("<@%s> has been invited to team %d. Invite `%d` expires <t:%d:R>.",
			target.DiscordID, teamID, invite.ID, invite.ExpiresDate.Unix()))
}

func (b *Bot) inviteAccept(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	inviteID, err := intArg(args, 0, "invite id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.invites.AcceptInvite(ctx, inviteID, user.ID); err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Invite accepted", "Welcome to the team!")
}

func (b *Bot) inviteDecline(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	inviteID, err := intArg(args, 0, "invite id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.invites.DeclineInvite(ctx, inviteID, user.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Invite declined", fmt.Sprintf("Invite `%d` declined.", inviteID))
}

func (b *Bot) inviteRevoke(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	inviteID, err := intArg(args, 0, "invite id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.invites.RevokeInvite(ctx, inviteID, user.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Invite revoked", fmt.Sprintf("Invite `%d` revoked.", inviteID))
}

func (b *Bot) teamInvites(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	invites, err := b.invites.ListTeamInvites(ctx, teamID, user.ID)
	if err != nil {
		return err
	}
	if len(invites) == 0 {
		return b.replyInfo(m.ChannelID, "Invites", "No pending invites.")
	}

	lines := make([]string, 0, len(invites))
	for _, invite := range invites {
		lines = append(lines, fmt.Sprintf("`%d` user %d, expires <t:%d:R>", invite.ID, invite.UserID, invite.ExpiresDate.Unix()))
	}
	return b.replyInfo(m.ChannelID, "Invites", strings.Join(lines, "\n"))
}

func (b *Bot) teamLeave(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.teams.LeaveTeam(ctx, teamID, user.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Left team", fmt.Sprintf("You are no longer part of team %d.", teamID))
}

func (b *Bot) teamRemove(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: team remove <id> @user", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	target, err := b.mentionedUser(ctx, args[1])
	if err != nil {
		return err
	}
	if err := b.teams.RemoveMember(ctx, teamID, user.ID, target.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Member removed",
		fmt.Sprintf("<@%s> has been removed from team %d.", target.DiscordID, teamID))
}

func (b *Bot) transferPropose(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: team transfer <id> @user", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	target, err := b.mentionedUser(ctx, args[1])
	if err != nil {
		return err
	}
	if err := b.teams.ProposeTransfer(ctx, teamID, user.ID, target.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Captaincy transfer proposed",
		fmt.Sprintf("<@%s>, confirm with `%steam confirm %d` within 5 minutes.", target.DiscordID, b.prefix, teamID))
}

func (b *Bot) transferConfirm(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.teams.ConfirmTransfer(ctx, teamID, user.ID); err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Captaincy transferred",
		fmt.Sprintf("You are now the captain of team %d.", teamID))
}

func (b *Bot) transferDecline(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	teamID, err := intArg(args, 0, "team id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.teams.DeclineTransfer(ctx, teamID, user.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Transfer declined",
		fmt.Sprintf("Captaincy transfer for team %d has been withdrawn.", teamID))
}

func intArg(args []string, index int, name string) (int, error) {
	if len(args) <= index {
		return 0, fmt.Errorf("%w: missing %s", services.ErrValidationFailed, name)
	}
	value, err := strconv.Atoi(args[index])
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", services.ErrValidationFailed, name, args[index])
	}
	return value, nil
}
