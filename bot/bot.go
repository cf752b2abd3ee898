package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/voltstriker/scrimbot/models"
	"github.com/voltstriker/scrimbot/services"
)

// commandTimeout ограничивает время обработки одной команды.
const commandTimeout = 10 * time.Second

type commandHandler func(ctx context.Context, m *discordgo.MessageCreate, args []string) error

// Bot — префиксный командный интерфейс поверх сервисного слоя. Каждое
// сообщение обрабатывается отдельно; бот не хранит состояния диалога, кроме
// предложений передачи капитанства внутри TeamService.
type Bot struct {
	session *discordgo.Session
	prefix  string
	logger  *slog.Logger

	users   services.UserService
	teams   services.TeamService
	invites services.InviteService
	leagues services.LeagueService
	matches services.MatchService
	games   services.GameService
	admins  services.AdminService

	commands map[string]commandHandler
}

func New(
	token, prefix string,
	users services.UserService,
	teams services.TeamService,
	invites services.InviteService,
	leagues services.LeagueService,
	matches services.MatchService,
	games services.GameService,
	admins services.AdminService,
	logger *slog.Logger,
) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	if logger == nil {
		logger = slog.Default()
	}

	b := &Bot{
		session: session,
		prefix:  prefix,
		logger:  logger,
		users:   users,
		teams:   teams,
		invites: invites,
		leagues: leagues,
		matches: matches,
		games:   games,
		admins:  admins,
	}
	b.commands = map[string]commandHandler{
		"team":   b.handleTeam,
		"league": b.handleLeague,
		"match":  b.handleMatch,
		"data":   b.handleData,
		"admin":  b.handleAdmin,
		"help":   b.handleHelp,
	}

	session.AddHandler(b.onMessageCreate)
	return b, nil
}

// Start открывает gateway-сессию и блокируется до отмены контекста.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	b.logger.Info("discord session opened", slog.String("prefix", b.prefix))

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	b.logger.Info("discord session closed")
	return nil
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, b.prefix) {
		return
	}

	fields := strings.Fields(strings.TrimPrefix(m.Content, b.prefix))
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	handler, ok := b.commands[name]
	if !ok {
		return
	}

	// Индикатор набора текста служит подтверждением приёма команды.
	_ = s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	if err := handler(ctx, m, fields[1:]); err != nil {
		b.logger.Warn("command failed",
			slog.String("command", name),
			slog.String("author", m.Author.ID),
			slog.Any("error", err))
		b.replyError(m.ChannelID, err)
	}
}

func (b *Bot) handleHelp(_ context.Context, m *discordgo.MessageCreate, _ []string) error {
	p := b.prefix
	lines := []string{
		p + "team create <name> <tag> — создать команду",
		p + "team list — команды сервера",
		p + "team info <id> — состав команды",
		p + "team invite <id> @user / accept <invite> / decline <invite> / revoke <invite>",
		p + "team leave <id> / remove <id> @user",
		p + "team transfer <id> @user / confirm <id> / refuse <id>",
		p + "league create <name> <game> <format> / list / join <league> <team>",
		p + "match challenge <myteam> <team> / accept <id> / cancel <id> / result <id> <round> <map> <a> <b>",
		p + "data game <name> / games / map <game> <mode> <name> / maps <game> / format <players> <rounds> / permit <format> <map> / reset",
		p + "admin add @user / addrole <role> / list / remove <id>",
	}
	return b.replyText(m.ChannelID, strings.Join(lines, "\n"))
}

// currentUser регистрирует автора сообщения при первом обращении.
func (b *Bot) currentUser(ctx context.Context, m *discordgo.MessageCreate) (*models.User, error) {
	displayName := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		displayName = m.Member.Nick
	}
	return b.users.GetOrCreateByDiscordID(ctx, m.Author.ID, displayName)
}

// mentionedUser извлекает snowflake из упоминания вида <@123> или <@!123>
// и регистрирует пользователя, если бот его ещё не видел.
func (b *Bot) mentionedUser(ctx context.Context, arg string) (*models.User, error) {
	id := strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	id = strings.TrimPrefix(id, "!")
	if id == "" || strings.ContainsFunc(id, func(r rune) bool { return r < '0' || r > '9' }) {
		return nil, fmt.Errorf("%w: expected a user mention, got %q", services.ErrValidationFailed, arg)
	}
	return b.users.GetOrCreateByDiscordID(ctx, id, "")
}
