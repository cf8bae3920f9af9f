package bootstrap

import (
	"context"
	"log"
	"time"

	"notebot-be/internal/config"
	"notebot-be/internal/constant"
	"notebot-be/internal/controller"
	"notebot-be/internal/pkg/logger"
	"notebot-be/internal/repository/contract"
	"notebot-be/internal/repository/memory"
	"notebot-be/internal/repository/redisrepo"
	"notebot-be/internal/repository/unitofwork"
	"notebot-be/internal/service"
	"notebot-be/internal/websocket"

	pktNats "notebot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DialogueController controller.IDialogueController
	NoteController     controller.INoteController

	// Dialogue core, shared by the REST controller and the websocket route
	DialogueService service.IDialogueService

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & notification
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS mirror is opt-in: without a URL the services publish in-process only.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// Dialogue session storage
	ttl := time.Duration(cfg.Dialogue.TTLMinutes) * time.Minute
	var dialogueRepo contract.DialogueRepository
	if cfg.Dialogue.Store == "redis" {
		dialogueRepo = redisrepo.NewDialogueRepository(rdb, ttl)
		log.Printf("[INFO] Using Dialogue Store: REDIS")
	} else {
		dialogueRepo = memory.NewDialogueRepository(ttl)
		log.Printf("[INFO] Using Dialogue Store: MEMORY")
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(constant.NoteEventsTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.NoteEventsTopic,
		wsHub, // Hub implements NotificationDelivery
		wsLogger,
	)

	noteService := service.NewNoteService(
		uowFactory,
		publisherService,
		natsPub,
		sysLogger,
	)

	dialogueService := service.NewDialogueService(
		noteService,
		dialogueRepo,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		DialogueController: controller.NewDialogueController(dialogueService),
		NoteController:     controller.NewNoteController(noteService),

		DialogueService: dialogueService,
		ConsumerService: consumerService,
		WebSocketHub:    wsHub,
	}
}
