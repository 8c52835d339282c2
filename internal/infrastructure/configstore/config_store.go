package configstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/credimart/lending-service/internal/domain/service"
)

// Store implements port.ConfigStore over the lending_config table. Each
// model lives under a (category, key) pair as a jsonb document; a missing
// row falls back to the compiled-in defaults, so a fresh database works
// without seeding.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a PostgreSQL-backed configuration store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// ScoringConfig fetches the scoring model, or the default when unconfigured.
func (s *Store) ScoringConfig(ctx context.Context) (service.ScoringConfig, error) {
	var doc scoringDoc
	found, err := s.getValue(ctx, "scoring", "model", &doc)
	if err != nil {
		return service.ScoringConfig{}, err
	}
	if !found {
		return service.DefaultScoringConfig(), nil
	}
	return doc.toDomain(), nil
}

// EligibilityConfig fetches the eligibility model, or the default when
// unconfigured.
func (s *Store) EligibilityConfig(ctx context.Context) (service.EligibilityConfig, error) {
	var doc eligibilityDoc
	found, err := s.getValue(ctx, "eligibility", "model", &doc)
	if err != nil {
		return service.EligibilityConfig{}, err
	}
	if !found {
		return service.DefaultEligibilityConfig(), nil
	}
	return doc.toDomain(), nil
}

func (s *Store) getValue(ctx context.Context, category, key string, out any) (bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM lending_config WHERE category = $1 AND key = $2`,
		category, key,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query config %s/%s: %w", category, key, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("unmarshal config %s/%s: %w", category, key, err)
	}
	return true, nil
}

// ---------------------------------------------------------------------------
// wire documents
// ---------------------------------------------------------------------------

type amountTierDoc struct {
	Min        decimal.Decimal `json:"min"`
	Max        decimal.Decimal `json:"max"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type durationTierDoc struct {
	MinDays    int             `json:"min_days"`
	MaxDays    int             `json:"max_days"`
	Multiplier decimal.Decimal `json:"multiplier"`
}

type scoringDoc struct {
	BasePoints              decimal.Decimal   `json:"base_points"`
	AmountTiers             []amountTierDoc   `json:"amount_tiers"`
	DurationTiers           []durationTierDoc `json:"duration_tiers"`
	MaxPoints               decimal.Decimal   `json:"max_points"`
	PartialRepaymentEnabled bool              `json:"partial_repayment_enabled"`
	MinPartialPoints        decimal.Decimal   `json:"min_partial_points"`
	FullRepaymentMultiplier decimal.Decimal   `json:"full_repayment_multiplier"`
	FullRepaymentBonus      decimal.Decimal   `json:"full_repayment_bonus"`
	MaxScore                int               `json:"max_score"`
}

func (d scoringDoc) toDomain() service.ScoringConfig {
	cfg := service.ScoringConfig{
		BasePoints:              d.BasePoints,
		MaxPoints:               d.MaxPoints,
		PartialRepaymentEnabled: d.PartialRepaymentEnabled,
		MinPartialPoints:        d.MinPartialPoints,
		FullRepaymentMultiplier: d.FullRepaymentMultiplier,
		FullRepaymentBonus:      d.FullRepaymentBonus,
		MaxScore:                d.MaxScore,
	}
	for _, t := range d.AmountTiers {
		cfg.AmountTiers = append(cfg.AmountTiers, service.AmountTier{
			Min: t.Min, Max: t.Max, Multiplier: t.Multiplier,
		})
	}
	for _, t := range d.DurationTiers {
		cfg.DurationTiers = append(cfg.DurationTiers, service.DurationTier{
			MinDays: t.MinDays, MaxDays: t.MaxDays, Multiplier: t.Multiplier,
		})
	}
	return cfg
}

type scoreThresholdDoc struct {
	MinScore int             `json:"min_score"`
	Amount   decimal.Decimal `json:"amount"`
}

type rateTierDoc struct {
	MaxScore int             `json:"max_score"`
	Rate     decimal.Decimal `json:"rate"`
}

type periodTierDoc struct {
	MaxScore int `json:"max_score"`
	Days     int `json:"days"`
}

type eligibilityDoc struct {
	FirstTimeAmount decimal.Decimal     `json:"first_time_amount"`
	ScoreThresholds []scoreThresholdDoc `json:"score_thresholds"`
	RateTiers       []rateTierDoc       `json:"rate_tiers"`
	MinRate         decimal.Decimal     `json:"min_rate"`
	MaxRate         decimal.Decimal     `json:"max_rate"`
	PeriodTiers     []periodTierDoc     `json:"period_tiers"`
	MinPeriodDays   int                 `json:"min_period_days"`
	MaxPeriodDays   int                 `json:"max_period_days"`
}

func (d eligibilityDoc) toDomain() service.EligibilityConfig {
	cfg := service.EligibilityConfig{
		FirstTimeAmount: d.FirstTimeAmount,
		MinRate:         d.MinRate,
		MaxRate:         d.MaxRate,
		MinPeriodDays:   d.MinPeriodDays,
		MaxPeriodDays:   d.MaxPeriodDays,
	}
	for _, t := range d.ScoreThresholds {
		cfg.ScoreThresholds = append(cfg.ScoreThresholds, service.ScoreThreshold{
			MinScore: t.MinScore, Amount: t.Amount,
		})
	}
	for _, t := range d.RateTiers {
		cfg.RateTiers = append(cfg.RateTiers, service.RateTier{
			MaxScore: t.MaxScore, Rate: t.Rate,
		})
	}
	for _, t := range d.PeriodTiers {
		cfg.PeriodTiers = append(cfg.PeriodTiers, service.PeriodTier{
			MaxScore: t.MaxScore, Days: t.Days,
		})
	}
	return cfg
}
