package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coverwing/membership/api"
	"github.com/coverwing/membership/config"
	"github.com/coverwing/membership/internal/bootstrap"
	"github.com/coverwing/membership/internal/cache"
	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/geo"
	"github.com/coverwing/membership/internal/kafka"
	"github.com/coverwing/membership/internal/payments"
	ratesprovider "github.com/coverwing/membership/internal/rates"
	"github.com/coverwing/membership/internal/repository"
	"github.com/coverwing/membership/internal/service/checkout"
	"github.com/coverwing/membership/internal/service/pricing"
	"github.com/coverwing/membership/internal/service/quote"
	"github.com/coverwing/membership/internal/service/rates"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Rates.CacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	sessionRepo := repository.NewSessionRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	quoteRepo := repository.NewQuoteRepository(pool)
	referralRepo := repository.NewReferralRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	catalogRepo := repository.NewCatalogRepository(pool)
	rateRepo := repository.NewRateRepository(pool)

	quoteService := quote.NewQuoteService(
		sessionRepo,
		membershipRepo,
		quoteRepo,
		referralRepo,
		rateRepo,
		redisCache,
		producer,
		cfg.Kafka.MembershipTopic,
		time.Duration(cfg.Session.MaxAgeHours)*time.Hour,
		time.Duration(cfg.Jobs.FollowupStaleMinutes)*time.Minute,
		quote.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		quote.WithLoadingRates(loadingRates(cfg.Pricing)),
		quote.WithCurrency(cfg.Pricing.Currency),
	)

	checkoutService := checkout.NewCheckoutService(
		payments.NewStripeClient(cfg.Stripe),
		quoteRepo,
		membershipRepo,
		customerRepo,
		catalogRepo,
		producer,
		cfg.Kafka.NotificationsTopic,
	)

	rateService := rates.NewRateService(ratesprovider.NewProvider(cfg.Rates), rateRepo, redisCache)

	router := api.NewRouter(
		quoteService,
		checkoutService,
		rateService,
		geo.NewClient(cfg.Geo),
		cfg.Jobs.Token,
	)

	if err := bootstrap.Run(ctx, cfg, router); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func loadingRates(cfg config.PricingConfig) pricing.LoadingRates {
	byDuration := make(map[domain.DurationType]int64, len(cfg.CoverageLoading))
	for duration, amount := range cfg.CoverageLoading {
		byDuration[domain.DurationType(duration)] = amount
	}
	return pricing.LoadingRates{
		MedicalPerHead:    cfg.MedicalLoadingPerHead,
		ByDuration:        byDuration,
		HighRiskSurcharge: cfg.HighRiskSurcharge,
	}
}
