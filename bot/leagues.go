package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/voltstriker/scrimbot/services"
)

func (b *Bot) handleLeague(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return b.replyText(m.ChannelID, "Usage: "+b.prefix+"league <create|list|join|teams>")
	}

	sub := strings.ToLower(args[0])
	args = args[1:]
	switch sub {
	case "create":
		return b.leagueCreate(ctx, m, args)
	case "list":
		return b.leagueList(ctx, m)
	case "join":
		return b.leagueJoin(ctx, m, args)
	case "teams":
		return b.leagueTeams(ctx, m, args)
	default:
		return fmt.Errorf("%w: unknown league subcommand %q", services.ErrValidationFailed, sub)
	}
}

func (b *Bot) leagueCreate(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("%w: usage: league create <name> <game id> <format id>", services.ErrValidationFailed)
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}

	// Создание лиги — административное действие.
	if err := b.requireAdmin(ctx, m); err != nil {
		return err
	}

	formatID, err := intArg(args, len(args)-1, "format id")
	if err != nil {
		return err
	}
	gameID, err := intArg(args, len(args)-2, "game id")
	if err != nil {
		return err
	}
	name := strings.Join(args[:len(args)-2], " ")

	league, err := b.leagues.CreateLeague(ctx, name, m.GuildID, gameID, formatID, user.ID)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "League created",
		fmt.Sprintf("**%s** registered with ID %d.", league.Name, league.ID))
}

func (b *Bot) leagueList(ctx context.Context, m *discordgo.MessageCreate) error {
	leagues, err := b.leagues.ListLeagues(ctx, m.GuildID)
	if err != nil {
		return err
	}
	if len(leagues) == 0 {
		return b.replyInfo(m.ChannelID, "Leagues", "No leagues on this server yet.")
	}

	lines := make([]string, 0, len(leagues))
	for _, league := range leagues {
		lines = append(lines, fmt.Sprintf("`%d` %s", league.ID, league.Name))
	}
	return b.replyInfo(m.ChannelID, "Leagues", strings.Join(lines, "\n"))
}

func (b *Bot) leagueJoin(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	leagueID, err := intArg(args, 0, "league id")
	if err != nil {
		return err
	}
	teamID, err := intArg(args, 1, "team id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.leagues.JoinLeague(ctx, leagueID, teamID, user.ID); err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "League joined",
		fmt.Sprintf("Team %d has entered league %d.", teamID, leagueID))
}

func (b *Bot) leagueTeams(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	leagueID, err := intArg(args, 0, "league id")
	if err != nil {
		return err
	}
	teams, err := b.leagues.ListLeagueTeams(ctx, leagueID)
	if err != nil {
		return err
	}
	if len(teams) == 0 {
		return b.replyInfo(m.ChannelID, "League teams", "No teams in this league yet.")
	}

	lines := make([]string, 0, len(teams))
	for _, team := range teams {
		lines = append(lines, fmt.Sprintf("`%d` %s [%s]", team.ID, team.Name, team.Tag))
	}
	return b.replyInfo(m.ChannelID, "League teams", strings.Join(lines, "\n"))
}

func (b *Bot) handleMatch(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	if len(args) == 0 {
		return b.replyText(m.ChannelID, "Usage: "+b.prefix+"match <challenge|accept|cancel|result|results>")
	}

	sub := strings.ToLower(args[0])
	args = args[1:]
	switch sub {
	case "challenge":
		return b.matchChallenge(ctx, m, args)
	case "accept":
		return b.matchAccept(ctx, m, args)
	case "cancel":
		return b.matchCancel(ctx, m, args)
	case "result":
		return b.matchResult(ctx, m, args)
	case "results":
		return b.matchResults(ctx, m, args)
	default:
		return fmt.Errorf("%w: unknown match subcommand %q", services.ErrValidationFailed, sub)
	}
}

func (b *Bot) matchChallenge(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	challengingID, err := intArg(args, 0, "your team id")
	if err != nil {
		return err
	}
	defendingID, err := intArg(args, 1, "opponent team id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}

	// Дата матча по умолчанию — через неделю; уточняется капитанами позже.
	match, err := b.matches.Challenge(ctx, challengingID, defendingID, user.ID, time.Now().Add(7*24*time.Hour))
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Challenge issued",
		fmt.Sprintf("Match `%d`: team %d challenges team %d in league %d.",
			match.ID, match.ChallengingTeam, match.DefendingTeam, match.LeagueID))
}

func (b *Bot) matchAccept(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	matchID, err := intArg(args, 0, "match id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.matches.AcceptChallenge(ctx, matchID, user.ID); err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Challenge accepted", fmt.Sprintf("Match `%d` is on.", matchID))
}

func (b *Bot) matchCancel(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	matchID, err := intArg(args, 0, "match id")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}
	if err := b.matches.CancelMatch(ctx, matchID, user.ID); err != nil {
		return err
	}
	return b.replyInfo(m.ChannelID, "Match cancelled", fmt.Sprintf("Match `%d` has been cancelled.", matchID))
}

func (b *Bot) matchResult(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	matchID, err := intArg(args, 0, "match id")
	if err != nil {
		return err
	}
	round, err := intArg(args, 1, "round")
	if err != nil {
		return err
	}
	mapID, err := intArg(args, 2, "map id")
	if err != nil {
		return err
	}
	challengingScore, err := intArg(args, 3, "challenging team score")
	if err != nil {
		return err
	}
	defendingScore, err := intArg(args, 4, "defending team score")
	if err != nil {
		return err
	}
	user, err := b.currentUser(ctx, m)
	if err != nil {
		return err
	}

	result, err := b.matches.RecordResult(ctx, matchID, round, mapID, challengingScore, defendingScore, user.ID)
	if err != nil {
		return err
	}
	return b.replySuccess(m.ChannelID, "Result recorded",
		fmt.Sprintf("Match `%d` round %d: %d — %d, team %d takes the round.",
			matchID, result.Round, result.ChallengingTeamScore, result.DefendingTeamScore, result.WinningTeam))
}

func (b *Bot) matchResults(ctx context.Context, m *discordgo.MessageCreate, args []string) error {
	matchID, err := intArg(args, 0, "match id")
	if err != nil {
		return err
	}
	results, err := b.matches.ListResults(ctx, matchID)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return b.replyInfo(m.ChannelID, "Match results", "No rounds recorded yet.")
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("Round %d: %d — %d (winner: team %d)",
			r.Round, r.ChallengingTeamScore, r.DefendingTeamScore, r.WinningTeam))
	}
	return b.replyInfo(m.ChannelID, fmt.Sprintf("Match %d results", matchID), strings.Join(lines, "\n"))
}
