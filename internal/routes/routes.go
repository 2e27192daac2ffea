package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saeid-a/SocialGoBack/internal/appsettings"
	"github.com/saeid-a/SocialGoBack/internal/config"
	"github.com/saeid-a/SocialGoBack/internal/handlers"
	"github.com/saeid-a/SocialGoBack/internal/middleware"
	"github.com/saeid-a/SocialGoBack/internal/realtime"
	"github.com/saeid-a/SocialGoBack/internal/repository"
	"github.com/saeid-a/SocialGoBack/internal/services"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	reportRepo := repository.NewReportRepository(db)
	billingRepo := repository.NewBillingRepository(db)

	presenceHub := realtime.NewHub()
	go presenceHub.Run()

	paymentClient := services.NewStripeClient(cfg.PaymentAPIURL, cfg.PaymentSecretKey)
	profileService := services.NewProfileService(profileRepo, cfg.GoModeDuration)
	visibilityService := services.NewVisibilityService(blockRepo, profileRepo, cfg.NearbyFuzzDegrees)
	postService := services.NewPostService(postRepo, profileRepo, cfg.PostJitterDegrees)
	moderationService := services.NewModerationService(blockRepo, reportRepo)
	billingService := services.NewBillingService(billingRepo, profileRepo, services.NewGrantTx(db), paymentClient, cfg.BoostDuration)
	settingsStore := appsettings.Open(cfg.SettingsPath)

	profileHandler := handlers.NewProfileHandler(profileService, presenceHub)
	nearbyHandler := handlers.NewNearbyHandler(visibilityService)
	postHandler := handlers.NewPostHandler(postService)
	moderationHandler := handlers.NewModerationHandler(moderationService)
	billingHandler := handlers.NewBillingHandler(billingService, profileService, cfg.PaymentWebhookSecret)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)
	presenceHandler := handlers.NewPresenceHandler(presenceHub, cfg.JWTSecret)

	api := app.Group("/api")

	// The payment processor signs its calls instead of carrying a user token.
	api.Post("/billing/webhook", billingHandler.Webhook)

	protected := api.Group("/v1",
		middleware.AuthRequired(cfg.JWTSecret),
		middleware.EnsureProfile(profileService),
	)

	profiles := protected.Group("/profiles")
	profiles.Get("/me", profileHandler.GetMe)
	profiles.Put("/me/status", profileHandler.UpdateStatus)
	profiles.Delete("/me", profileHandler.DeleteMe)

	protected.Get("/nearby", nearbyHandler.GetNearbyUsers)

	posts := protected.Group("/posts")
	posts.Get("", postHandler.ListPosts)
	posts.Post("", postHandler.CreatePost)

	blocks := protected.Group("/blocks")
	blocks.Get("", moderationHandler.ListBlocked)
	blocks.Post("", moderationHandler.BlockUser)
	blocks.Delete("/:userID", moderationHandler.UnblockUser)

	protected.Post("/reports", moderationHandler.ReportUser)

	billing := protected.Group("/billing")
	billing.Get("/products", billingHandler.ListProducts)
	billing.Post("/checkout", billingHandler.CreateCheckout)
	billing.Post("/portal", billingHandler.CreatePortal)

	settings := protected.Group("/settings")
	settings.Get("", settingsHandler.GetSettings)
	settings.Put("", settingsHandler.UpdateSetting)

	api.Use("/v1/ws/presence", presenceHandler.WebSocketAuth)
	api.Get("/v1/ws/presence", websocket.New(presenceHandler.HandleWebSocket))
}
