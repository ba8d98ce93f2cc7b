package protocal

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"claritas/configs"
	httpAdapter "claritas/internal/adapters/input/http"
	analyzerAdapter "claritas/internal/adapters/output/analyzer"
	lineAdapter "claritas/internal/adapters/output/line"
	"claritas/internal/adapters/output/lmstudio"
	"claritas/internal/adapters/output/localstore"
	"claritas/internal/adapters/output/memory"
	"claritas/internal/adapters/output/microphone"
	"claritas/internal/adapters/output/postgres"
	"claritas/internal/application"
	"claritas/internal/domain"
	"claritas/internal/ports/output"
	database "claritas/pkg/database_driver/gorm"
	"claritas/pkg/validator"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// stores struct - the persistence chosen by storage.driver
type stores struct {
	sessions output.SessionStore
	profiles output.ProfileStore
	db       *gorm.DB
}

// closer pairs a resource with the name logged when closing it fails
type closer struct {
	name string
	c    io.Closer
}

// ServeHTTP func
func ServeHTTP() error {
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.LoadDotEnv()
	configs.InitViper("./configs", cfg.ENV)
	conf := configs.GetViper()
	setupLogger(conf.App)
	logrus.Info(conf.App.Env)

	location := domain.LoadLocation(conf.App.Timezone)
	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024,
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	// Wire up the hexagonal architecture layers
	// Output adapters (persistence)
	store, err := openStores(conf)
	if err != nil {
		return err
	}
	// Output adapters (devices and remote services)
	mic, chunks := newMicrophone(conf.Capture)
	analyzer := analyzerAdapter.NewAnalyzerClientAdapter(conf.Analyzer)
	llm, err := lmstudio.NewLMStudioClientAdapter(conf.LMStudio)
	if err != nil {
		return err
	}
	var lineClient *lineAdapter.LineClientAdapter
	if conf.Line.ChannelToken != "" {
		lineClient, err = lineAdapter.NewLineClientAdapter(conf.Line, location)
		if err != nil {
			logrus.Fatalf("Failed to create LINE client: %v", err)
		}
	}
	notifier := lineAdapter.NewNotifier(lineClient)

	// Application services (use cases)
	validate := validator.New()
	workflow := application.NewCaptureWorkflow(mic, analyzer, store.sessions, store.profiles, notifier, validate,
		application.CaptureWorkflowOptions{
			MinPayloadBytes: conf.Analyzer.MinPayloadBytes,
			RetryDelay:      conf.Capture.RetryDelay,
		})
	sessionSrv := application.NewSessionService(store.sessions, location)
	profileSrv := application.NewProfileService(store.profiles, validate)
	reportSrv := application.NewReportService(store.sessions, llm, location, application.ReportOptions{
		SystemPrompt: conf.LMStudio.SystemPrompt,
		Temperature:  conf.Report.Temperature,
		Language:     conf.Report.Language,
	})

	// Input adapter (HTTP handler)
	services := httpAdapter.Services{
		Sessions: sessionSrv,
		Capture:  workflow,
		Profiles: profileSrv,
		Reports:  reportSrv,
	}
	if chunks != nil {
		services.Chunks = chunks
	}
	hdl := httpAdapter.New(services, store.db, location)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range c {
			logrus.Println("Gracefull shut down ...")
			resources := []closer{{name: "capture workflow", c: workflow}}
			if chunks != nil {
				resources = append(resources, closer{name: "stream microphone", c: chunks})
			}
			closeAll(resources...)
			if store.db != nil {
				database.DisconnectPostgres(store.db)
			}
			if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
				logrus.Println("Error when shutdown server: ", err)
			}
		}
	}()

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)
	hdl.Routes(app.Group("/v1/api"))

	// LINE webhook endpoint, the caregiver's chat commands
	if lineClient != nil && conf.Line.ChannelSecret != "" {
		lineWebhookSrv := application.NewLineWebhookService(lineClient, store.sessions, location)
		lineWebhookHdl := httpAdapter.NewLineWebhookHandler(lineWebhookSrv, conf.Line.ChannelSecret)
		webhook := app.Group("/webhook")
		{
			webhook.Post("/line", lineWebhookHdl.HandleWebhook)
		}
	}

	logrus.Println("Listerning on port: ", conf.App.Port)
	return app.Listen(":" + conf.App.Port)
}

func setupLogger(app configs.App) {
	if app.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if app.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

// openStores opens the session and profile stores for storage.driver
func openStores(conf *configs.Config) (stores, error) {
	switch conf.Storage.Driver {
	case "memory":
		logrus.Warn("Sessions are kept in memory and are lost on restart")
		return stores{
			sessions: memory.NewMemorySessionStore(),
			profiles: memory.NewProfileStore(),
		}, nil

	case "postgres":
		dbConGorm, err := database.ConnectToPostgreSQL(database.Options{
			Host:         conf.Postgres.Host,
			Port:         conf.Postgres.Port,
			Username:     conf.Postgres.Username,
			Password:     conf.Postgres.Password,
			DBName:       conf.Postgres.DbName,
			SSLMode:      conf.Postgres.SSLMode,
			MaxOpenConns: conf.Postgres.MaxOpenConns,
			MaxIdleConns: conf.Postgres.MaxIdleConns,
		})
		if err != nil {
			return stores{}, err
		}
		sessions, err := postgres.NewSessionRepository(dbConGorm.Postgres)
		if err != nil {
			database.DisconnectPostgres(dbConGorm.Postgres)
			return stores{}, err
		}
		// the caregiver profile is device-local state and stays on disk
		kv, err := localstore.NewFileKV(conf.Storage.Dir)
		if err != nil {
			database.DisconnectPostgres(dbConGorm.Postgres)
			return stores{}, err
		}
		return stores{
			sessions: sessions,
			profiles: localstore.NewProfileStore(kv),
			db:       dbConGorm.Postgres,
		}, nil

	case "file", "":
		kv, err := localstore.NewFileKV(conf.Storage.Dir)
		if err != nil {
			return stores{}, err
		}
		logrus.Infof("Sessions are stored in %s", filepath.Clean(kv.Dir()))
		return stores{
			sessions: localstore.NewSessionStore(kv),
			profiles: localstore.NewProfileStore(kv),
		}, nil

	default:
		return stores{}, fmt.Errorf("unknown storage driver: %s", conf.Storage.Driver)
	}
}

// newMicrophone returns the capture device, and the stream microphone when audio is pushed over HTTP
func newMicrophone(conf configs.Capture) (output.Microphone, *microphone.StreamMicrophone) {
	if conf.Microphone == "file" {
		logrus.Infof("Recording replays %s", conf.FilePath)
		return microphone.NewFileMicrophone(conf.FilePath, 0), nil
	}
	stream := microphone.NewStreamMicrophone(conf.ChunkBuffer)
	return stream, stream
}

// closeAll closes every resource in order and logs the ones that fail
func closeAll(resources ...closer) {
	for _, r := range resources {
		if err := r.c.Close(); err != nil {
			logrus.Errorf("Error when closing %s: %v", r.name, err)
		}
	}
}
