package http

import (
	"context"
	"fmt"

	"PensionChat/internal/config"
	"PensionChat/internal/initial"
	jwtMiddleware "PensionChat/internal/middleware/jwt"
	chatbotService "PensionChat/internal/modules/chatbot/application/service"
	chatbotEmbedding "PensionChat/internal/modules/chatbot/infrastructure/embedding"
	chatbotGms "PensionChat/internal/modules/chatbot/infrastructure/gms"
	chatbotPersistence "PensionChat/internal/modules/chatbot/infrastructure/persistence"
	chatbotPipeline "PensionChat/internal/modules/chatbot/infrastructure/pipeline"
	chatbotRerank "PensionChat/internal/modules/chatbot/infrastructure/rerank"
	chatbotVectordb "PensionChat/internal/modules/chatbot/infrastructure/vectordb"
	chatbotHandler "PensionChat/internal/modules/chatbot/interface/http"
	"PensionChat/pkg/ssl"
	"PensionChat/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var GE *gin.Engine

func init() {
	conf := config.GetConfig()

	GE = gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	GE.Use(cors.New(corsConfig))
	GE.Use(ssl.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))

	chatLogRepo := chatbotPersistence.NewChatLogRepository(initial.GormDB)
	termRepo := chatbotPersistence.NewTermRepository(initial.GormDB)
	vs := chatbotVectordb.NewRedisVectorStore(conf.ChatbotConfig.ScanCount)

	embedder, meta, err := chatbotEmbedding.NewEmbedderFromConfig(context.Background(), conf)
	if err != nil {
		zlog.Fatal(fmt.Sprintf("embedding 初始化失败: %v", err))
	}
	zlog.Info(fmt.Sprintf("embedding 就绪: provider=%s model=%s dim=%d", meta.Provider, meta.Model, meta.Dim))

	rerankClient := chatbotRerank.NewClientFromConfig(&conf.RerankConfig)
	gmsClient, err := chatbotGms.NewClientFromConfig(&conf.GmsConfig)
	if err != nil {
		zlog.Fatal(fmt.Sprintf("gms 初始化失败: %v", err))
	}

	chatPipeline, err := chatbotPipeline.NewChatPipeline(chatLogRepo, termRepo, vs, embedder, rerankClient, gmsClient, chatbotPipeline.Options{
		Namespace:      conf.ChatbotConfig.Namespace,
		TopK:           conf.ChatbotConfig.TopK,
		ScoreThreshold: conf.ChatbotConfig.ScoreThreshold,
		HistoryLimit:   conf.ChatbotConfig.HistoryLimit,
	})
	if err != nil {
		zlog.Fatal(fmt.Sprintf("对话流水线初始化失败: %v", err))
	}

	chatbotSvc := chatbotService.NewChatbotService(chatPipeline, chatLogRepo)
	ingestSvc := chatbotService.NewIngestService(termRepo, vs, embedder, conf.ChatbotConfig.Namespace)
	termSvc := chatbotService.NewTermService(termRepo)

	chatbotH := chatbotHandler.NewChatbotHandler(chatbotSvc)
	ingestH := chatbotHandler.NewIngestHandler(ingestSvc)
	termH := chatbotHandler.NewTermHandler(termSvc)

	// 对话与术语接口对外开放（匿名会话）
	GE.POST("/chat/send", chatbotH.SendChat)
	GE.POST("/chat/send/:sid", chatbotH.SendChat)
	GE.GET("/chat/send/:term", chatbotH.SendTerm)
	GE.GET("/chat/send/:term/:sid", chatbotH.SendTerm)
	GE.GET("/term/list", termH.GetTermList)

	// 摄取是运维操作，需要鉴权
	authed := GE.Group("/")
	authed.Use(jwtMiddleware.Auth())
	authed.POST("/redis/update", ingestH.RebuildTermVectors)
}
