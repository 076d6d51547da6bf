package bootstrap

import (
	"context"
	"log"

	"axonflow-be/internal/config"
	"axonflow-be/internal/controller"
	"axonflow-be/internal/pkg/logger"
	"axonflow-be/internal/repository/implementation"
	"axonflow-be/internal/repository/unitofwork"
	"axonflow-be/internal/service"
	"axonflow-be/pkg/docproc"
	"axonflow-be/pkg/embedding"
	"axonflow-be/pkg/llm/factory"
	"axonflow-be/pkg/pdfextract"
	"axonflow-be/pkg/rag"
	"axonflow-be/pkg/textchunk"

	pktNats "axonflow-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	DocumentController controller.IDocumentController
	ChatbotController  controller.IChatbotController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Infra handles main.go needs for shutdown
	Logger        logger.ILogger
	NatsPublisher *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 3. AI Providers
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		openAIEmbedder := embedding.NewOpenAIProvider(cfg.Keys.OpenAI, cfg.Ai.EmbeddingModel)
		if cfg.Ai.OpenAIBaseURL != "" {
			openAIEmbedder.BaseURL = cfg.Ai.OpenAIBaseURL
		}
		embeddingProvider = openAIEmbedder
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Pipeline
	vectorRepo := implementation.NewDocumentVectorRepository(db)
	documentRepo := implementation.NewDocumentRepository(db)

	// Vector index must exist before the first upsert or search.
	if err := vectorRepo.EnsureIndex(context.Background()); err != nil {
		log.Printf("[WARN] Failed to ensure vector index: %v", err)
	}

	processor := docproc.NewProcessor(
		documentRepo,
		vectorRepo,
		pdfextract.NewExtractor(),
		textchunk.NewChunker(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap),
		embeddingProvider,
		natsEventPublisher(natsPub),
		sysLogger,
	)

	// Query embeddings are memoized; document chunks are embedded once
	// per run and bypass the cache.
	queryEmbedder := embedding.NewCachedProvider(embeddingProvider)
	ragEngine := rag.NewEngine(queryEmbedder, vectorRepo, llmProvider, sysLogger)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.ProcessTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.ProcessTopic,
		processor,
		sysLogger,
	)

	authService := service.NewAuthService(uowFactory, cfg.Keys.JwtSecret)
	documentService := service.NewDocumentService(uowFactory, publisherService, cfg.Upload.Dir, sysLogger)
	chatbotService := service.NewChatbotService(uowFactory, ragEngine)

	// 6. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		DocumentController: controller.NewDocumentController(documentService),
		ChatbotController:  controller.NewChatbotController(chatbotService),
		ConsumerService:    consumerService,
		Logger:             sysLogger,
		NatsPublisher:      natsPub,
	}
}

// natsEventPublisher adapts an optional NATS connection to the pipeline's
// publisher interface; a nil *Publisher must stay a nil interface.
func natsEventPublisher(p *pktNats.Publisher) docproc.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
