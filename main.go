package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/parkledger/statement-extraction/client"
	"github.com/parkledger/statement-extraction/config"
	"github.com/parkledger/statement-extraction/handler"
	"github.com/parkledger/statement-extraction/logger"
	"github.com/parkledger/statement-extraction/service"
)

func main() {
	log := logger.New()
	ctx := log.WithContext(context.Background())

	cfg := config.LoadConfig()
	policy := config.DefaultPolicy()

	synonyms, err := config.LoadSynonyms(cfg.SynonymsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SynonymsPath).Msg("failed to load category synonyms")
	}

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	pdfProcessor := service.NewPDFProcessor()

	// The structured model is optional: without credentials the service runs
	// on the rule parser and regex fallback alone.
	var extractor service.StructuredExtractor
	var suggester service.LabelSuggester
	if gemini, err := client.NewGeminiClient(ctx, cfg, synonyms, policy); err != nil {
		log.Warn().Err(err).Msg("structured model unavailable, running rule-based only")
	} else {
		extractor = gemini
		suggester = gemini
	}

	// Result persistence is optional too; without a bucket results are only
	// returned to the caller.
	var store service.ResultStore
	if cfg.ResultBucket != "" {
		gcsStore, err := client.NewGCSResultStore(ctx, cfg.ResultBucket)
		if err != nil {
			log.Warn().Err(err).Str("bucket", cfg.ResultBucket).Msg("result store unavailable, extractions will not be persisted")
		} else {
			store = gcsStore
			defer gcsStore.Close()
		}
	}

	mapper := service.NewCategoryMapper(synonyms, suggester)
	extractionService := service.NewExtractionService(pdfProcessor, tesseractClient, extractor, mapper, store, policy)
	rentRollService := service.NewRentRollService(pdfProcessor, tesseractClient, policy)

	statementHandler := handler.NewStatementHandler(extractionService)
	rentRollHandler := handler.NewRentRollHandler(rentRollService)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "statement-extraction",
		})
	})

	api := router.Group("/api/v1")
	{
		statements := api.Group("/statements")
		{
			statements.POST("/extract", statementHandler.Extract)
		}
		rentroll := api.Group("/rentroll")
		{
			rentroll.POST("/extract", rentRollHandler.Extract)
		}
	}

	log.Info().Str("port", cfg.ServerPort).Msg("starting statement extraction service")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// requestLogger attaches the service logger to every request context and logs
// one line per completed request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := log.WithContext(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		logger.FromContext(ctx).Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("request handled")
	}
}
