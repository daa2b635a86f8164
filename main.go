package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"infraspend/config"
	"infraspend/database"
	"infraspend/middleware"
	"infraspend/router"
	"infraspend/service"

	"github.com/joho/godotenv"
)

// @title Infraspend API
// @version 1.0
// @description Construction project expenditure approval and budget tracking
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const version = "1.0.0"

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 8080 or :8080")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Printf("infraspend v%s", version)
		return
	}

	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("port from command line: %s", port)
	}

	config.PrintConfig()

	level := slog.LevelDebug
	if cfg.Server.Mode == "release" {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	verifier := service.NewBcryptVerifier(0)
	if err := database.Init(cfg, verifier); err != nil {
		log.Fatalf("init database: %v", err)
	}

	middleware.InitJWT(cfg)

	var notifiers service.Notifiers
	if cfg.Email.Enabled {
		notifiers = append(notifiers, service.NewEmailService(&cfg.Email, cfg.Server.BaseURL))
	}
	if cfg.AMQP.Enabled {
		pub, err := service.DialEventPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("connect amqp: %v", err)
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}

	svc := service.New(database.NewStore(database.GetDB()),
		service.WithVerifier(verifier),
		service.WithNotifier(notifiers),
		service.WithBlobStore(service.NewDiskBlobStore(cfg.Storage.Dir, cfg.Storage.URLPrefix, cfg.Storage.MaxUploadMB<<20)),
	)

	if err := svc.ReconcileBudgets(context.Background()); err != nil {
		log.Fatalf("reconcile budgets: %v", err)
	}

	r := router.SetupRouter(cfg, svc)

	log.Printf("==========================================")
	log.Printf("  infraspend v%s", version)
	log.Printf("==========================================")
	log.Printf("  API:      http://localhost%s/api/", cfg.Server.Port)
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("==========================================")

	if err := r.Run(cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
