package core

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/avatarops-ai/avatarops/app/core/srv"
	"github.com/avatarops-ai/avatarops/app/store/sqlstore"
	"github.com/avatarops-ai/avatarops/pkg/cache"
	"github.com/avatarops-ai/avatarops/pkg/types"
	"github.com/avatarops-ai/avatarops/pkg/utils"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	cache      types.Cache
	httpClient *http.Client
	httpEngine *gin.Engine

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28,   //days
				Compress:   true, // disabled by default
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("avatarops", "core"),
		httpEngine: gin.New(),
		cache:      cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB),
	}

	setupSqlStore(core)

	core.srv = srv.SetupSrvs(
		srv.ApplyAI(cfg.AI.Token, cfg.AI.Endpoint, cfg.AI.Summarizer),
		srv.ApplyStreaming(cfg.Streaming, core.cache, cfg.Session.forLive()),
	)

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Cache() types.Cache {
	return s.cache
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}
