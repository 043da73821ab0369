package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"marketplace_messaging_service/internal/messaging/api/handlers"
	"marketplace_messaging_service/internal/messaging/app"
	"marketplace_messaging_service/internal/messaging/repository"
	"marketplace_messaging_service/internal/messaging/router"
	"marketplace_messaging_service/pkg/config"
	"marketplace_messaging_service/pkg/database"
	"marketplace_messaging_service/pkg/logger"
	testtool "marketplace_messaging_service/pkg/test_tool"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceLogPath)
	cfg := config.LoadConfig[config.Messaging](config.EnvConfig.MessagingService, config.EnvConfig.MessagingServiceYAMLPath)

	ctx := context.Background()

	// 1. 建立 PostgreSQL 連線 (conversations / messages / profiles)
	pgURI := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Host, cfg.PostgreSQL.Port, cfg.PostgreSQL.Database)
	pool, err := database.NewDatabaseConnection(database.Connection{
		ConnectStr:    pgURI,
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: time.Duration(cfg.PostgreSQL.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to postgreSQL database after retries",
			zap.String("address", fmt.Sprintf("[%s]", pgURI)),
			zap.Error(err),
		)
	}
	defer pool.Close()

	// 2. 建立 Redis 連線 (insert-event Pub/Sub)
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// 3. 建立 Mongo 連線 (訊息封存鏡像)
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.MongoSQL.User, cfg.MongoSQL.Password, cfg.MongoSQL.Host, cfg.MongoSQL.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    mongoURI,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: time.Duration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", mongoURI)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// 4. 建立 Kafka writer (message-created 通知 fan-out)
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: time.Duration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect kafka err : %v", err))
	}
	defer kafkaWriter.Close()

	// 5. 初始化 Repository
	convRepo := repository.NewConversationRepository(pool)
	msgRepo := repository.NewMessageRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	feed := repository.NewRedisPubSub(redisClient)
	notifier := repository.NewKafkaNotifier(kafkaWriter)
	archive := repository.NewMongoArchiveRepository(mongo.Database)

	// 6. 初始化 UseCases
	directoryUC := app.NewDirectoryUseCase(convRepo, msgRepo, profileRepo)
	conversationUC := app.NewConversationUseCase(convRepo, profileRepo)
	composerUC := app.NewComposerUseCase(convRepo, msgRepo, feed, notifier, archive, app.WriteSurfaced)
	archiveUC := app.NewArchiveUseCase(archive)

	// 7. 啟動 Fiber
	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.MessagingServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	// 注册路由
	messagingHandler := handlers.NewMessagingHandler(directoryUC, conversationUC, composerUC, archiveUC)
	chatWebsocket := app.NewChatWebsocketHandler(directoryUC, conversationUC, composerUC, msgRepo, feed)
	router.RegisterRoutes(r, messagingHandler, chatWebsocket)

	testtool.StartPprof()

	// Listen
	port := ":" + cfg.Port
	log.Printf("Messaging Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
