package main

import (
	// Go Internal Packages
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Local Packages
	config "pdv-bridge/config"
	kafka "pdv-bridge/kafka"
	mongodb "pdv-bridge/repositories/mongodb"
	redis "pdv-bridge/repositories/redis"
	gateway "pdv-bridge/services/gateway"
	notifier "pdv-bridge/services/notifier"
	retry "pdv-bridge/services/retry"
	sales "pdv-bridge/services/sales"
	server "pdv-bridge/server"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() *koanf.Koanf {
	configPathMsg := "Path to the application config file"
	configPath := kingpin.Flag("config", configPathMsg).Short('c').Default("config.yml").String()

	kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k
}

func main() {
	k := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Validate the config loaded
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(k.String("logger.level")))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = appKonf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, _ := cfg.Build()
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo Connection
	mongoClient, err := mongodb.Connect(ctx, appKonf.Mongo.URI)
	if err != nil {
		logger.Fatal("cannot create mongo client", zap.Error(err))
	}

	// Redis Connection
	redisClient, err := redis.Connect(ctx, appKonf.Redis.URI, appKonf.Redis.Password)
	if err != nil {
		logger.Fatal("cannot create redis client", zap.Error(err))
	}

	db := appKonf.Mongo.Database
	txRepo := mongodb.NewTxRepository(mongoClient, db)
	mappingRepo := mongodb.NewMappingRepository(mongoClient, db)
	configRepo := mongodb.NewConfigRepository(mongoClient, db)
	logRepo := mongodb.NewLogRepository(mongoClient, db)
	notificationRepo := mongodb.NewNotificationRepository(mongoClient, db)
	dlQueue := redis.NewDeadLetterQueue(redisClient, logger)

	// Optional Kafka sink for notification events
	var sink notifier.Sink
	if appKonf.Kafka.Enabled {
		metrics := kprom.NewMetrics("pdvbridge")
		conf := &kafka.ProducerConfig{
			Brokers: appKonf.Kafka.Brokers,
			Name:    appKonf.Kafka.ProducerName,
			Topic:   appKonf.Kafka.Topic,
		}
		producer, err := kafka.NewEventProducer(conf, metrics, logger)
		if err != nil {
			logger.Fatal("cannot create notification producer", zap.Error(err))
		}
		defer producer.Close()
		sink = producer
	}

	notifySvc := notifier.NewNotifier(notificationRepo, txRepo, sink, appKonf.Notifier.BufferSize, logger)
	go notifySvc.Run(ctx)

	gatewayTimeout := time.Duration(appKonf.Gateway.TimeoutSeconds) * time.Second
	gatewayClient := gateway.NewClient(configRepo, mappingRepo, txRepo, gatewayTimeout, logger)

	coordinator := retry.NewCoordinator(ctx, txRepo, gatewayClient, notifySvc, dlQueue, logger)
	processor := sales.NewProcessor(configRepo, txRepo, gatewayClient, coordinator, logRepo, logger)

	srv := server.NewServer(processor, gatewayClient, configRepo, mappingRepo, txRepo, logRepo, notificationRepo, logger)
	httpServer := &http.Server{
		Addr:    appKonf.Server.Addr,
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", appKonf.Server.Addr))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("http server failed", zap.Error(err))
	}
}
