package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vsbaha/ENASGame-new/internal/config"
	"github.com/vsbaha/ENASGame-new/internal/notify"
	"github.com/vsbaha/ENASGame-new/internal/repository/pg"
	"github.com/vsbaha/ENASGame-new/internal/service"
	"github.com/vsbaha/ENASGame-new/internal/session"
	"github.com/vsbaha/ENASGame-new/internal/storage"
	"github.com/vsbaha/ENASGame-new/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	settings, pool, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	defer pool.Close()

	logger := config.NewLogger()

	api, err := tgbotapi.NewBotAPI(settings.BotToken)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}

	users := pg.NewUsersRepo(pool)
	games := pg.NewGamesRepo(pool)
	tournaments := pg.NewTournamentsRepo(pool)
	teams := pg.NewTeamsRepo(pool)
	players := pg.NewPlayersRepo(pool)
	sessions := pg.NewSessionsRepo(pool)

	files := storage.NewFiles(settings.StaticDir)
	dispatcher := notify.NewDispatcher(telegram.NewSender(api), users, logger)

	access := service.NewAccessService(users, settings.SuperAdminIDs)
	svc := telegram.Services{
		Access:      access,
		Games:       service.NewGamesService(games),
		Tournaments: service.NewTournamentsService(tournaments, games, users, access, dispatcher, files, logger),
		Teams:       service.NewTeamsService(teams, players, tournaments, games, users, access, dispatcher, files, logger),
		Stats:       service.NewStatsService(users, tournaments, teams),
		Sessions:    session.NewStore(sessions),
	}

	bot := telegram.NewBot(api, svc, files, logger)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot: %v", err)
	}
}
