package app

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/despensa-app/despensa/config"
	"github.com/despensa-app/despensa/internal/records"
	"github.com/despensa-app/despensa/internal/store"
)

type Application struct {
	appConfig *config.AppConfig
	store     store.Store
	service   *records.Service
	bus       EventBus.Bus
	sched     *cron.Cron
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Store() store.Store {
	return a.store
}

func (a *Application) Service() *records.Service {
	return a.service
}

func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

// Init sets up timezone, logging, the durable store and the record
// service. It must be called once before anything else.
func (a *Application) Init() error {
	cfg := a.appConfig

	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger()

	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		return fmt.Errorf("workdir %s: %w", cfg.System.Workdir, err)
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	a.store = st
	zap.S().Infof("store opened, type: %s", cfg.Database.Type)

	a.bus = EventBus.New()
	svc, err := records.NewService(a.store, a.bus)
	if err != nil {
		return err
	}
	a.service = svc

	a.initJob()
	return nil
}

func (a *Application) initLogger() {
	cfg := a.appConfig

	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.LogPath(),
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func openStore(cfg *config.AppConfig) (store.Store, error) {
	switch cfg.Database.Type {
	case "", "bolt":
		return store.OpenBolt(cfg.StorePath())
	case "postgres":
		return store.OpenPostgres(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Database.Type)
	}
}

// Release releases application resources.
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			zap.S().Errorf("store close error %s", err.Error())
		}
	}
	_ = zap.L().Sync()
}
