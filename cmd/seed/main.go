package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"handyghana/internal/config"
	"handyghana/internal/database"
	"handyghana/internal/domain"
	"handyghana/internal/logger"
	"handyghana/internal/repository"
)

type seedProvider struct {
	email    string
	name     string
	phone    string
	category string
	location string
	bio      string
	skills   []string
	services []domain.Service
}

func main() {
	_ = godotenv.Load()
	logger.Setup()

	cfg := config.Load()
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("connect database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("migrate database: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	providers := repository.NewProviderRepository(db)
	services := repository.NewServiceRepository(db)
	settings := repository.NewSettingsRepository(db)

	if _, err := settings.Get(ctx); err != nil {
		logrus.Fatalf("seed settings: %v", err)
	}

	seedAdmin(ctx, users)
	for _, sp := range seedProviders() {
		seedOneProvider(ctx, users, providers, services, sp)
	}

	logrus.Info("seed complete")
}

func seedAdmin(ctx context.Context, users *repository.UserRepository) {
	const email = "admin@handyghana.com"
	if _, err := users.GetByEmail(ctx, email); err == nil {
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	u := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Platform Admin",
		Role:         domain.RoleAdmin,
	}
	if err := users.Create(ctx, u); err != nil {
		logrus.Fatalf("seed admin: %v", err)
	}
	logrus.Infof("created admin %s", email)
}

func seedOneProvider(
	ctx context.Context,
	users *repository.UserRepository,
	providers *repository.ProviderRepository,
	services *repository.ServiceRepository,
	sp seedProvider,
) {
	if _, err := users.GetByEmail(ctx, sp.email); err == nil {
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("provider12345"), bcrypt.DefaultCost)
	u := &domain.User{
		Email:         sp.email,
		PasswordHash:  string(hash),
		Name:          sp.name,
		Phone:         sp.phone,
		PhoneVerified: true,
		Role:          domain.RoleProvider,
	}
	if err := users.Create(ctx, u); err != nil {
		logrus.Fatalf("seed user %s: %v", sp.email, err)
	}

	now := time.Now()
	p := &domain.Provider{
		UserID:             u.ID,
		Category:           sp.category,
		Location:           sp.location,
		Bio:                sp.bio,
		Skills:             sp.skills,
		ServiceAreas:       []string{sp.location},
		VerificationStatus: domain.VerificationVerified,
		VerifiedAt:         &now,
	}
	if err := providers.Create(ctx, p); err != nil {
		logrus.Fatalf("seed provider %s: %v", sp.email, err)
	}

	for i := range sp.services {
		svc := sp.services[i]
		svc.ProviderID = p.ID
		svc.IsActive = true
		if err := services.Create(ctx, &svc); err != nil {
			logrus.Fatalf("seed service %s: %v", svc.Name, err)
		}
	}
	logrus.Infof("created provider %s with %d services", sp.email, len(sp.services))
}

func seedProviders() []seedProvider {
	return []seedProvider{
		{
			email:    "kwame.plumbing@handyghana.com",
			name:     "Kwame Asante",
			phone:    "+233244000001",
			category: "plumbing",
			location: "Accra",
			bio:      "Licensed plumber covering Greater Accra since 2015.",
			skills:   []string{"pipe repair", "water heaters", "installations"},
			services: []domain.Service{
				{
					Name:         "Emergency pipe repair",
					Description:  "Same-day callout for burst or leaking pipes.",
					PricingModel: domain.PricingPayAsYouGo,
					BasePrice:    15000, // GHS 150.00
				},
				{
					Name:           "Monthly plumbing checkup",
					Description:    "Scheduled inspection of all fittings and drains.",
					PricingModel:   domain.PricingSubscription,
					MonthlyPrice:   8000,
					BillingCycle:   domain.BillingMonthly,
					VisitsPerCycle: 1,
				},
			},
		},
		{
			email:    "ama.cleaning@handyghana.com",
			name:     "Ama Mensah",
			phone:    "+233244000002",
			category: "cleaning",
			location: "Kumasi",
			bio:      "Home and office cleaning with a five-person crew.",
			skills:   []string{"deep cleaning", "move-out cleaning"},
			services: []domain.Service{
				{
					Name:         "Deep home cleaning",
					Description:  "Full house cleaning including windows and upholstery.",
					PricingModel: domain.PricingPayAsYouGo,
					BasePrice:    25000,
				},
				{
					Name:           "Weekly office cleaning",
					PricingModel:   domain.PricingSubscription,
					MonthlyPrice:   60000,
					BillingCycle:   domain.BillingWeekly,
					VisitsPerCycle: 1,
				},
			},
		},
		{
			email:    "yaw.electric@handyghana.com",
			name:     "Yaw Owusu",
			phone:    "+233244000003",
			category: "electrical",
			location: "Takoradi",
			bio:      "Certified electrician, residential and light commercial.",
			skills:   []string{"wiring", "solar installs", "fault finding"},
			services: []domain.Service{
				{
					Name:         "Electrical fault diagnosis",
					PricingModel: domain.PricingPayAsYouGo,
					BasePrice:    12000,
				},
			},
		},
	}
}
