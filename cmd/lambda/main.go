package main

import (
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/lambda"
	"github.com/cloudlinker/uploader/internal/provider"
	"github.com/cloudlinker/uploader/internal/relay"
)

// Serverless entrypoint. The log store is omitted here: the function is
// stateless and the hosting account wires persistence separately when
// needed.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	var storageProvider provider.Provider
	switch cfg.Upload.Provider {
	case config.ProviderSupabase:
		storageProvider = provider.NewSupabaseClient(cfg.Supabase)
	default:
		storageProvider = provider.NewCloudinaryClient(cfg.Cloudinary)
	}

	relaySvc := relay.NewService(storageProvider, nil, nil, logger, cfg.Upload)
	handler := lambda.NewHandler(relaySvc, cfg.CORS, cfg.Auth, logger)

	awslambda.Start(handler.Handle)
}
