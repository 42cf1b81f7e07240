package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/packfinderz-offers/internal/pricing"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
)

var maxMarkupPercent = decimal.NewFromInt(1000)

// MarkupSetting is the stored markup and the value pricing actually uses.
type MarkupSetting struct {
	PricingMarkupPercent   *decimal.Decimal `json:"pricingMarkupPercent"`
	EffectiveMarkupPercent decimal.Decimal  `json:"effectiveMarkupPercent"`
}

// Service reads and updates the pricing markup. Reads always hit storage.
type Service interface {
	pricing.MarkupReader
	GetMarkup(ctx context.Context) (*MarkupSetting, error)
	UpdateMarkup(ctx context.Context, percent decimal.Decimal) (*MarkupSetting, error)
}

type service struct {
	repo     *Repository
	fallback decimal.Decimal
	logg     *logger.Logger
}

// NewService constructs the settings service. fallback replaces the built-in
// default markup when positive.
func NewService(repo *Repository, fallback decimal.Decimal, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, fallback: fallback, logg: logg}, nil
}

func (s *service) EffectiveMarkup(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.GetMarkup(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return setting.EffectiveMarkupPercent, nil
}

func (s *service) GetMarkup(ctx context.Context) (*MarkupSetting, error) {
	row, err := s.repo.Get(ctx, pricing.MarkupSettingKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read markup setting")
	}
	var stored *decimal.Decimal
	if row != nil {
		stored = pricing.ParseMarkup(row.Value)
	}
	return s.view(stored), nil
}

func (s *service) UpdateMarkup(ctx context.Context, percent decimal.Decimal) (*MarkupSetting, error) {
	if !percent.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pricingMarkupPercent must be greater than 0")
	}
	if percent.GreaterThan(maxMarkupPercent) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("pricingMarkupPercent must not exceed %s", maxMarkupPercent))
	}
	if _, err := s.repo.Put(ctx, pricing.MarkupSettingKey, percent.String()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store markup setting")
	}
	s.logg.Info(s.logg.WithField(ctx, "markup_percent", percent.String()), "settings.markup.updated")
	return s.view(&percent), nil
}

func (s *service) view(stored *decimal.Decimal) *MarkupSetting {
	return &MarkupSetting{
		PricingMarkupPercent:   stored,
		EffectiveMarkupPercent: pricing.MarkupPercent{Value: stored, Fallback: s.fallback}.Effective(),
	}
}
