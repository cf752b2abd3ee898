package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/voltstriker/scrimbot/services"
)

// handleData — справочные данные и обслуживание базы. Все подкоманды
// требуют права администратора.
func (b *Bot) handleData(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return b.replyText(m.ChannelID, "Usage: "+b.prefix+"data <game|games|map|maps|format|permit|reset>")
	}
	if err := b.requireAdmin(ctx, m); err != nil {
		return err
	}

	sub := strings.ToLower(args[0])
	args = args[1:]
	switch sub {
	case "game":
		return b.dataAddGame(ctx, m, args)
	case "games":
		return b.dataListGames(ctx, m)
	case "map":
		return b.dataAddMap(ctx, m, args)
	case "maps":
		return b.dataListMaps(ctx, m, args)
	case "format":
		return b.dataAddFormat(ctx, m, args)
	case "permit":
		return b.dataPermitMap(ctx, m, args)
	case "reset":
		return b.dataReset(ctx, m)
	default:
		return fmt.Errorf("%w: unknown data subcommand %q", services.ErrValidationFailed, sub)
	}
}

func (b *Bot) dataAddGame(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: usage: data game <name>", services.ErrValidationFailed)
	}
	game, err := b.games.AddGame(ctx, strings.Join(args, " "), "")
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Game added", fmt.Sprintf("**%s** registered with ID %d.", game.Name, game.ID))
}

func (b *Bot) dataListGames(ctx context.Context, m *discordgo.MessageCreate) error {
	games, err := b.games.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		return b.replyInfo(m.ChannelID, "Games", "No games registered yet.")
	}

	lines := make([]string, 0, len(games))
	for _, game := range games {
		lines = append(lines, fmt.Sprintf("`%d` %s", game.ID, game.Name))
	}
	return b.replyInfo(m.ChannelID, "Games", strings.Join(lines, "\n"))
}

func (b *Bot) dataAddMap(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	gameID, err := intArg(args, 0, "game id")
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return fmt.Errorf("%w: usage: data map <game id> <mode> <name>", services.ErrValidationFailed)
	}
	added, err := b.games.AddMap(ctx, gameID, strings.Join(args[2:], " "), args[1])
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Map added",
		fmt.Sprintf("**%s** (%s) registered with ID %d.", added.Name, added.Mode, added.ID))
}

func (b *Bot) dataListMaps(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	gameID, err := intArg(args, 0, "game id")
	if err != nil {
		return err
	}
	maps, err := b.games.ListMaps(ctx, gameID)
	if err != nil {
		return err
	}
	if len(maps) == 0 {
		return b.replyInfo(m.ChannelID, "Maps", "No maps registered for this game.")
	}

	lines := make([]string, 0, len(maps))
	for _, mp := range maps {
		lines = append(lines, fmt.Sprintf("`%d` %s (%s)", mp.ID, mp.Name, mp.Mode))
	}
	return b.replyInfo(m.ChannelID, "Maps", strings.Join(lines, "\n"))
}

func (b *Bot) dataAddFormat(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	maxPlayers, err := intArg(args, 0, "max players")
	if err != nil {
		return err
	}
	matchCount, err := intArg(args, 1, "match count")
	if err != nil {
		return err
	}
	format, err := b.games.AddFormat(ctx, maxPlayers, matchCount)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Format added",
		fmt.Sprintf("Format `%d`: %dv%d, best of %d rounds.", format.ID, format.MaxPlayers, format.MaxPlayers, format.MatchCount))
}

func (b *Bot) dataPermitMap(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	formatID, err := intArg(args, 0, "format id")
	if err != nil {
		return err
	}
	mapID, err := intArg(args, 1, "map id")
	if err != nil {
		return err
	}
	if err := b.games.PermitMap(ctx, formatID, mapID); err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Map permitted",
		fmt.Sprintf("Map `%d` is now allowed for format `%d`.", mapID, formatID))
}

func (b *Bot) dataReset(ctx context.Context, m *discordgo.MessageCreate) error {
	dropped, err := b.admins.ResetDatabase(ctx)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Database reset",
		fmt.Sprintf("Dropped and recreated %d tables. All data except logs is gone.", dropped))
}
