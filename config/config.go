package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/IndexSignal/models"
)

// MomentumConfig tunes the momentum override used when HTF bias is inconclusive.
type MomentumConfig struct {
	Lookback       int     `yaml:"lookback" default:"10" validate:"gt=1"`
	MinChangePct   float64 `yaml:"min_change_pct" default:"0.15" validate:"gt=0"`
	MinConsistency float64 `yaml:"min_consistency" default:"0.7" validate:"gte=0,lte=1"`
}

// ConfidenceConfig is the fixed-weight confidence hierarchy. The defaults are the
// calibrated production values; every one of them is a recalibration candidate.
type ConfidenceConfig struct {
	HTFCap         float64 `yaml:"htf_cap" default:"40" validate:"gt=0"`
	LTFCap         float64 `yaml:"ltf_cap" default:"25" validate:"gt=0"`
	ModelCap       float64 `yaml:"model_cap" default:"15" validate:"gt=0"`
	CandlestickCap float64 `yaml:"candlestick_cap" default:"10" validate:"gt=0"`
	BasisCap       float64 `yaml:"basis_cap" default:"5" validate:"gt=0"`
	BreadthCap     float64 `yaml:"breadth_cap" default:"5" validate:"gt=0"`

	QualityHighPts   float64 `yaml:"quality_high_pts" default:"15"`
	QualityMediumPts float64 `yaml:"quality_medium_pts" default:"10"`
	QualityLowPts    float64 `yaml:"quality_low_pts" default:"5"`

	RegionAlignedPts     float64 `yaml:"region_aligned_pts" default:"10"`
	RegionEquilibriumPts float64 `yaml:"region_equilibrium_pts" default:"5"`
	RegionMisalignedPts  float64 `yaml:"region_misaligned_pts" default:"2"`

	SecondTestPts     float64 `yaml:"second_test_pts" default:"12"`
	FirstTestPts      float64 `yaml:"first_test_pts" default:"8"`
	StructureBreakPts float64 `yaml:"structure_break_pts" default:"6"`
	OtherEntryPts     float64 `yaml:"other_entry_pts" default:"3"`

	MomentumConfirmedPts   float64 `yaml:"momentum_confirmed_pts" default:"5"`
	MomentumUnconfirmedPts float64 `yaml:"momentum_unconfirmed_pts" default:"1"`

	ModelNeutralPts  float64 `yaml:"model_neutral_pts" default:"5"`
	ModelFlatPts     float64 `yaml:"model_flat_pts" default:"7.5"`
	ModelConflictPts float64 `yaml:"model_conflict_pts" default:"2"`

	CandleNeutralPts float64 `yaml:"candle_neutral_pts" default:"4"`

	BasisNeutralPts  float64 `yaml:"basis_neutral_pts" default:"2.5"`
	BasisConflictPts float64 `yaml:"basis_conflict_pts" default:"1"`

	BreadthNeutralPts  float64 `yaml:"breadth_neutral_pts" default:"2.5"`
	BreadthConflictPts float64 `yaml:"breadth_conflict_pts" default:"1"`

	VeryHighBand float64 `yaml:"very_high_band" default:"80"`
	HighBand     float64 `yaml:"high_band" default:"65"`
	ModerateBand float64 `yaml:"moderate_band" default:"50"`
	LowBand      float64 `yaml:"low_band" default:"35"`
}

// Config carries every tuned constant of the analysis pipeline. All values are
// domain-tuned with no derivation from first principles; keeping them here lets
// calibration and backtesting swap the scoring policy without touching detection.
type Config struct {
	SwingStrength      int     `yaml:"swing_strength" default:"5" validate:"gt=0"`
	MinGapFraction     float64 `yaml:"min_gap_fraction" default:"0.001" validate:"gt=0"`
	LiquidityLookback  int     `yaml:"liquidity_lookback" default:"50" validate:"gt=2"`
	LiquidityTolerance float64 `yaml:"liquidity_tolerance" default:"0.002" validate:"gt=0"`
	SweepTolerance     float64 `yaml:"sweep_tolerance" default:"0.0005" validate:"gt=0"`
	EquilibriumBand    float64 `yaml:"equilibrium_band" default:"0.05" validate:"gte=0,lt=0.5"`
	KeyZoneProximity   float64 `yaml:"key_zone_proximity" default:"0.02" validate:"gt=0"`
	StaleTolerance     float64 `yaml:"stale_tolerance" default:"0.02" validate:"gt=0"`
	VolumeLookback     int     `yaml:"volume_lookback" default:"20" validate:"gt=0"`

	Momentum   MomentumConfig   `yaml:"momentum"`
	Confidence ConfidenceConfig `yaml:"confidence"`

	TimeframeWeights map[models.Timeframe]float64 `yaml:"timeframe_weights"`
}

// SetDefaults fills the timeframe weight table; map defaults do not fit struct tags.
func (c *Config) SetDefaults() {
	if len(c.TimeframeWeights) == 0 {
		c.TimeframeWeights = map[models.Timeframe]float64{
			models.TimeframeMonthly: 1.0,
			models.TimeframeWeekly:  0.9,
			models.TimeframeDaily:   0.8,
			models.Timeframe4H:      0.6,
			models.Timeframe1H:      0.4,
			models.Timeframe15M:     0.3,
			models.Timeframe5M:      0.2,
			models.Timeframe3M:      0.1,
		}
	}
}

// Weight returns the scoring weight of a timeframe, zero when unknown.
func (c *Config) Weight(tf models.Timeframe) float64 {
	return c.TimeframeWeights[tf]
}

// Default returns a Config with every knob at its calibrated default.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		// Only reachable on a broken default tag, which is a build-time mistake.
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load builds the config from defaults, overlays an optional YAML file and validates.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks field bounds and the monotone timeframe weight requirement.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	// Higher timeframes must never weigh less than lower ones.
	order := models.AllTimeframes()
	for i := 1; i < len(order); i++ {
		hi, lo := order[i-1], order[i]
		if c.TimeframeWeights[hi] < c.TimeframeWeights[lo] {
			return fmt.Errorf("timeframe weights must decrease from %s (%.2f) to %s (%.2f)",
				hi, c.TimeframeWeights[hi], lo, c.TimeframeWeights[lo])
		}
	}
	return nil
}
