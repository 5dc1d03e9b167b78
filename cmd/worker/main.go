package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coverwing/membership/config"
	"github.com/coverwing/membership/internal/cache"
	"github.com/coverwing/membership/internal/domain"
	"github.com/coverwing/membership/internal/email"
	"github.com/coverwing/membership/internal/kafka"
	ratesprovider "github.com/coverwing/membership/internal/rates"
	"github.com/coverwing/membership/internal/repository"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Rates.CacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	sessionRepo := repository.NewSessionRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)
	quoteRepo := repository.NewQuoteRepository(pool)
	referralRepo := repository.NewReferralRepository(pool)
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
	rateService := rates.NewRateService(ratesprovider.NewProvider(cfg.Rates), rateRepo, redisCache)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(cfg.SMTP)

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.MembershipEvent) error {
			if err := emailSender.Send(ctx, event); err != nil {
				log.Printf("send email error: %v", err)
			}
			return nil
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	followupTicker := time.NewTicker(time.Duration(cfg.Jobs.FollowupSweepMinutes) * time.Minute)
	defer followupTicker.Stop()
	ratesTicker := time.NewTicker(time.Duration(cfg.Jobs.RatesRefreshMinutes) * time.Minute)
	defer ratesTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-followupTicker.C:
			flagged, err := quoteService.FollowUpStaleDrafts(ctx)
			if err != nil {
				log.Printf("followup sweep error: %v", err)
				continue
			}
			if len(flagged) > 0 {
				log.Printf("flagged %d stale draft memberships", len(flagged))
			}
		case <-ratesTicker.C:
			updated, err := rateService.Refresh(ctx)
			if err != nil {
				log.Printf("rates refresh error: %v", err)
				continue
			}
			log.Printf("refreshed %d exchange rates", updated)
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
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
