package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/voltstriker/scrimbot/services"
)

// requireAdmin проверяет право на каждом вызове: отозванный грант перестаёт
// действовать со следующей команды.
func (b *Bot) requireAdmin(ctx context.Context, m *discordgo.MessageCreate) error {
	var roleIDs []string
	if m.Member != nil {
		roleIDs = m.Member.Roles
	}
	_, err := b.admins.Resolve(ctx, m.Author.ID, m.GuildID, roleIDs)
	return err
}

func (b *Bot) handleAdmin(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return b.replyText(m.ChannelID, "Usage: "+b.prefix+"admin <add|addrole|list|remove>")
	}
	if err := b.requireAdmin(ctx, m); err != nil {
		return err
	}

	sub := strings.ToLower(args[0])
	args = args[1:]
	switch sub {
	case "add":
		return b.adminAdd(ctx, m, args)
	case "addrole":
		return b.adminAddRole(ctx, m, args)
	case "list":
		return b.adminList(ctx, m)
	case "remove":
		return b.adminRemove(ctx, m, args)
	default:
		return fmt.Errorf("%w: unknown admin subcommand %q", services.ErrValidationFailed, sub)
	}
}

func (b *Bot) adminAdd(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: admin add @user", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	target, err := b.mentionedUser(ctx, args[0])
	if err != nil {
		return err
	}

	grant, err := b.admins.AddUserAdmin(ctx, target.DiscordID, user.ID)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Admin added",
		fmt.Sprintf("<@%s> is now a bot administrator (grant `%d`).", target.DiscordID, grant.ID))
}

func (b *Bot) adminAddRole(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: admin addrole <role mention or id>", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}

	roleID := strings.TrimSuffix(strings.TrimPrefix(args[0], "<@&"), ">")
	grant, err := b.admins.AddRoleAdmin(ctx, m.GuildID, roleID, user.ID)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Admin role added",
		fmt.Sprintf("Role <@&%s> now grants bot administration (grant `%d`).", roleID, grant.ID))
}

func (b *Bot) adminList(ctx context.Context, m *discordgo.MessageCreate) error {
	grants, err := b.admins.ListAdmins(ctx, m.GuildID)
	if err != nil {
		return err
	}
	if len(grants) == 0 {
		return b.replyInfo(m.ChannelID, "Administrators", "No admin grants configured.")
	}

	lines := make([]string, 0, len(grants))
	for _, grant := range grants {
		switch {
		case grant.DiscordUserID != "":
			lines = append(lines, fmt.Sprintf("`%d` user <@%s>", grant.ID, grant.DiscordUserID))
		case grant.DiscordRoleID != "":
			lines = append(lines, fmt.Sprintf("`%d` role <@&%s>", grant.ID, grant.DiscordRoleID))
		}
	}
	return b.replyInfo(m.ChannelID, "Administrators", strings.Join(lines, "\n"))
}

func (b *Bot) adminRemove(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	grantID, err := intArg(args, 0, "grant id")
	if err != nil {
		return err
	}
	if err := b.admins.RemoveAdmin(ctx, grantID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Admin removed", fmt.Sprintf("Grant `%d` revoked.", grantID))
}
