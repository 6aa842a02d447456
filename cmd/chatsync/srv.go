package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/snowflake"
	"github.com/urfave/cli/v2"
	"github.com/zunou-lab/chatsync/config"
	"github.com/zunou-lab/chatsync/internal/cache"
	"github.com/zunou-lab/chatsync/internal/client"
	"github.com/zunou-lab/chatsync/internal/common"
	"github.com/zunou-lab/chatsync/internal/domain"
	"github.com/zunou-lab/chatsync/internal/domain/optimistic"
	"github.com/zunou-lab/chatsync/internal/domain/search"
	"github.com/zunou-lab/chatsync/internal/entity"
	"github.com/zunou-lab/chatsync/pkg/logger"
	"github.com/zunou-lab/chatsync/pkg/session"
	"github.com/zunou-lab/chatsync/pkg/storage"
	"github.com/zunou-lab/chatsync/pkg/xcontext"
	"github.com/zunou-lab/chatsync/pkg/xredis"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs config.Configs

	store       cache.Store
	runMirror   func(ctx context.Context)
	searchIndex search.Indexer
	feeder      *search.Feeder

	userSession *session.Session[entity.User]
	chatClient  *client.ChatClient
	realtime    *client.RealtimeListener
	storage     storage.Storage

	coordinator *optimistic.Coordinator

	teamThreadDomain    domain.TeamThreadDomain
	directMessageDomain domain.DirectMessageDomain
	attachmentDomain    domain.AttachmentDomain
}

func (s *srv) loadConfig(cliCtx *cli.Context) error {
	cfg, err := loadConfigs(cliCtx.String("config"))
	if err != nil {
		return err
	}

	s.configs = cfg

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	level := logger.INFO
	if cfg.Env == "local" {
		level = logger.DEBUG
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(level))
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithHTTPClient(ctx, &http.Client{Timeout: cfg.GraphQL.Timeout})
	s.ctx = ctx

	return nil
}

func (s *srv) loadStore() error {
	store := cache.NewMemoryStore(s.ctx)

	if s.configs.Redis.InvalidationChannel != "" {
		redisClient, err := xredis.NewClient(s.ctx)
		if err != nil {
			return err
		}

		mirror := cache.NewRedisMirror(s.ctx, redisClient)
		store.SetMirror(mirror)
		s.runMirror = func(ctx context.Context) { mirror.Run(ctx, store) }
	}

	s.store = store
	return nil
}

func (s *srv) loadClients() {
	s.userSession = session.New[entity.User]()
	s.chatClient = client.NewChatClient(
		client.NewGraphQLCaller(s.configs.GraphQL, s.userSession))
	s.realtime = client.NewRealtimeListener(s.store, s.userSession)
	s.storage = storage.NewS3Storage(s.configs.Storage)
}

func (s *srv) loadDomains() {
	s.coordinator = optimistic.NewCoordinator(
		s.store,
		optimistic.NewResolver(s.store),
		common.NewTempAllocator(xcontext.SnowFlake(s.ctx)),
		s.userSession.CurrentUser,
	)

	s.searchIndex = search.NewBleveIndex(s.ctx)
	s.feeder = search.NewFeeder(s.store, s.searchIndex)

	s.teamThreadDomain = domain.NewTeamThreadDomain(
		s.store, s.coordinator, s.chatClient, s.searchIndex)
	s.directMessageDomain = domain.NewDirectMessageDomain(
		s.store, s.coordinator, s.chatClient)
	s.attachmentDomain = domain.NewAttachmentDomain(s.storage)
}

func (s *srv) startDaemon(cliCtx *cli.Context) error {
	if err := s.loadConfig(cliCtx); err != nil {
		return err
	}

	if err := s.loadStore(); err != nil {
		return err
	}

	s.loadClients()
	s.loadDomains()

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopFeeder := s.feeder.Start(ctx)
	defer stopFeeder()
	defer s.searchIndex.Close()

	if s.runMirror != nil {
		go s.runMirror(ctx)
	}

	xcontext.Logger(ctx).Infof("Sync daemon started")

	if err := s.realtime.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	<-ctx.Done()
	xcontext.Logger(ctx).Infof("Sync daemon stopped")
	return nil
}
