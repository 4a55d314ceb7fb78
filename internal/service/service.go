package service

import (
	"context"
	"errors"
	"time"

	"restobackend/internal/domain"
	"restobackend/internal/kitchen"

	"go.uber.org/zap"
)

// ErrInvalidInput marks caller mistakes, as opposed to store failures.
var ErrInvalidInput = errors.New("invalid input")

// Store is the read side (plus the few single-row writes) the analytics
// core needs from persistence.
type Store interface {
	ListSalesBetween(ctx context.Context, from, to time.Time, statuses ...domain.OrderStatus) ([]domain.Sale, error)
	ListSalesByStatus(ctx context.Context, statuses ...domain.OrderStatus) ([]domain.Sale, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	CreateSale(ctx context.Context, sale domain.Sale) (domain.Sale, error)
	UpdateSaleStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListIngredients(ctx context.Context) ([]domain.Ingredient, error)
	ListPlatformConfigs(ctx context.Context) ([]domain.PlatformConfig, error)

	AdjustIngredientStock(ctx context.Context, id int64, delta float64) (*domain.Ingredient, error)
	UpsertIngredients(ctx context.Context, rows []domain.IngredientStockRow) (int, error)
}

type Settings struct {
	LookbackDays     int
	TargetMargin     float64
	TargetDailySales float64
	Estimator        kitchen.Estimator
}

func DefaultSettings() Settings {
	return Settings{
		LookbackDays:     30,
		TargetMargin:     30,
		TargetDailySales: 5,
		Estimator:        kitchen.DefaultSerialLine(),
	}
}

type Service struct {
	store    Store
	logger   *zap.Logger
	settings Settings
	now      func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithSettings(settings Settings) Option {
	return func(s *Service) {
		defaults := DefaultSettings()
		if settings.LookbackDays <= 0 {
			settings.LookbackDays = defaults.LookbackDays
		}
		if settings.TargetMargin <= 0 {
			settings.TargetMargin = defaults.TargetMargin
		}
		if settings.TargetDailySales <= 0 {
			settings.TargetDailySales = defaults.TargetDailySales
		}
		if settings.Estimator == nil {
			settings.Estimator = defaults.Estimator
		}
		s.settings = settings
	}
}

func New(store Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:    store,
		logger:   logger,
		settings: DefaultSettings(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Settings() Settings {
	return s.settings
}

// fail logs a data-access failure at the boundary of a computation.
func (s *Service) fail(op string, err error, fields ...zap.Field) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, context.Canceled) {
		return err
	}
	s.logger.Error(op+" failed", append(fields, zap.Error(err))...)
	return err
}
