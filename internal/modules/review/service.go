package review

import (
	"context"
	"errors"
	"fmt"

	"handyghana/internal/domain"
	"handyghana/internal/pkg/validator"
	"handyghana/internal/repository"
)

type ReviewRepository interface {
	Create(ctx context.Context, rev *domain.Review) error
	GetByID(ctx context.Context, id int64) (*domain.Review, error)
	ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, error)
	SetResponse(ctx context.Context, id int64, response string) error
	Aggregate(ctx context.Context, providerID int64) (float64, int, error)
	HasForBooking(ctx context.Context, userID, bookingID int64) (bool, error)
}

type ProviderStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Provider, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Provider, error)
	UpdateRating(ctx context.Context, id int64, rating float64, reviewCount int) error
}

type BookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type ReviewNotifier interface {
	NewReview(ctx context.Context, providerUserID int64, rev *domain.Review) error
}

type Service struct {
	reviews   ReviewRepository
	providers ProviderStore
	bookings  BookingReader
	notifs    ReviewNotifier
	loggerf   func(format string, args ...interface{})
}

func NewService(reviews ReviewRepository, providers ProviderStore, bookings BookingReader, notifs ReviewNotifier, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(format string, args ...interface{}) {}
	}
	return &Service{reviews: reviews, providers: providers, bookings: bookings, notifs: notifs, loggerf: loggerf}
}

type CreateReviewRequest struct {
	ProviderID int64  `json:"provider_id" binding:"required"`
	BookingID  *int64 `json:"booking_id"`
	Rating     int    `json:"rating" binding:"required,gte=1,lte=5"`
	Comment    string `json:"comment"`
}

type RespondRequest struct {
	Response string `json:"response" binding:"required"`
}

// Create stores a review and refreshes the provider's aggregate
// rating. A review referencing one of the author's completed bookings
// with the same provider is marked verified.
func (s *Service) Create(ctx context.Context, userID int64, req CreateReviewRequest) (*domain.Review, error) {
	p, err := s.providers.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, ErrProviderNotFound
	}
	if p.UserID == userID {
		return nil, fmt.Errorf("%w: you cannot review yourself", ErrValidation)
	}

	verified := false
	if req.BookingID != nil {
		b, err := s.bookings.GetByID(ctx, *req.BookingID)
		if err != nil {
			return nil, ErrBookingNotEligible
		}
		if b.UserID != userID || b.ProviderID != req.ProviderID || b.Status != domain.BookingCompleted {
			return nil, ErrBookingNotEligible
		}
		exists, err := s.reviews.HasForBooking(ctx, userID, *req.BookingID)
		if err != nil {
			return nil, fmt.Errorf("check existing review: %w", err)
		}
		if exists {
			return nil, ErrAlreadyReviewed
		}
		verified = true
	}

	rev := &domain.Review{
		ProviderID: req.ProviderID,
		UserID:     userID,
		BookingID:  req.BookingID,
		Rating:     req.Rating,
		Comment:    req.Comment,
		IsVerified: verified,
	}
	if errs := validator.Validate(rev); errs != nil {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}
	if err := s.reviews.Create(ctx, rev); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.refreshRating(ctx, req.ProviderID)

	if err := s.notifs.NewReview(ctx, p.UserID, rev); err != nil {
		s.loggerf("review: notify provider %d: %v", p.ID, err)
	}
	return rev, nil
}

func (s *Service) ListByProvider(ctx context.Context, providerID int64, limit, offset int) ([]domain.Review, error) {
	if _, err := s.providers.GetByID(ctx, providerID); err != nil {
		return nil, ErrProviderNotFound
	}
	return s.reviews.ListByProvider(ctx, providerID, limit, offset)
}

// Respond records the provider's single response to a review.
func (s *Service) Respond(ctx context.Context, userID, reviewID int64, text string) (*domain.Review, error) {
	rev, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, ErrNotFound
	}

	p, err := s.providers.GetByUserID(ctx, userID)
	if err != nil || p.ID != rev.ProviderID {
		return nil, ErrForbidden
	}

	if err := s.reviews.SetResponse(ctx, reviewID, text); err != nil {
		if errors.Is(err, repository.ErrAlreadyResponded) {
			return nil, ErrAlreadyResponded
		}
		return nil, fmt.Errorf("set response: %w", err)
	}
	return s.reviews.GetByID(ctx, reviewID)
}

func (s *Service) refreshRating(ctx context.Context, providerID int64) {
	avg, count, err := s.reviews.Aggregate(ctx, providerID)
	if err != nil {
		s.loggerf("review: aggregate rating for provider %d: %v", providerID, err)
		return
	}
	if err := s.providers.UpdateRating(ctx, providerID, avg, count); err != nil {
		s.loggerf("review: update rating for provider %d: %v", providerID, err)
	}
}
