package auth

import "github.com/tendant/contextauth/pkg/domain"

// Risk factor descriptions.
const (
	FactorUnknownDevice   = "unknown device"
	FactorNearbyLocation  = "new device at nearby known location"
	FactorUnknownLocation = "unknown location"
)

// RiskConfig holds the scoring weights and thresholds.
type RiskConfig struct {
	UnknownDeviceWeight   int
	NearbyLocationWeight  int
	UnknownLocationWeight int
	// SuspendThreshold is the lowest score that suspends the account.
	SuspendThreshold int
	// NearbyKm is the loose match distance and the match distance for
	// stored locations without a radius.
	NearbyKm float64
	// DefaultRadiusKm is the radius given to newly learned locations.
	DefaultRadiusKm float64
}

// DefaultRiskConfig returns the stock weights.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		UnknownDeviceWeight:   2,
		NearbyLocationWeight:  1,
		UnknownLocationWeight: 6,
		SuspendThreshold:      8,
		NearbyKm:              domain.NearbyThresholdKm,
		DefaultRadiusKm:       domain.DefaultRadiusKm,
	}
}

// RiskAssessment is the result of scoring one attempt.
type RiskAssessment struct {
	Score   int
	Factors []string
}

// RiskScorer scores login attempts against what is known about the user.
// It has no side effects.
type RiskScorer struct {
	config RiskConfig
}

// NewRiskScorer creates a new risk scorer. Zero fields take the defaults.
func NewRiskScorer(config RiskConfig) *RiskScorer {
	defaults := DefaultRiskConfig()
	if config.UnknownDeviceWeight == 0 {
		config.UnknownDeviceWeight = defaults.UnknownDeviceWeight
	}
	if config.NearbyLocationWeight == 0 {
		config.NearbyLocationWeight = defaults.NearbyLocationWeight
	}
	if config.UnknownLocationWeight == 0 {
		config.UnknownLocationWeight = defaults.UnknownLocationWeight
	}
	if config.SuspendThreshold == 0 {
		config.SuspendThreshold = defaults.SuspendThreshold
	}
	if config.NearbyKm == 0 {
		config.NearbyKm = defaults.NearbyKm
	}
	if config.DefaultRadiusKm == 0 {
		config.DefaultRadiusKm = defaults.DefaultRadiusKm
	}
	return &RiskScorer{config: config}
}

// Config returns the effective configuration.
func (s *RiskScorer) Config() RiskConfig {
	return s.config
}

// Score computes the risk of attempt given the stored context.
//
// An unknown device adds UnknownDeviceWeight. A location covered by no known
// location adds UnknownLocationWeight unless it is within NearbyKm of one,
// in which case it adds NearbyLocationWeight. An unknown device at a location
// within NearbyKm of a known one also adds NearbyLocationWeight.
func (s *RiskScorer) Score(attempt domain.LoginAttempt, uc *domain.UserContext) RiskAssessment {
	if uc == nil {
		uc = &domain.UserContext{}
	}

	result := RiskAssessment{Factors: []string{}}

	deviceKnown := uc.HasDevice(attempt.DeviceID)
	if !deviceKnown {
		result.Score += s.config.UnknownDeviceWeight
		result.Factors = append(result.Factors, FactorUnknownDevice)
	}

	known := uc.HasKnownLocation(attempt.Location, s.config.NearbyKm)
	nearby := uc.HasNearbyLocation(attempt.Location, s.config.NearbyKm)

	switch {
	case !known && !nearby:
		result.Score += s.config.UnknownLocationWeight
		result.Factors = append(result.Factors, FactorUnknownLocation)
	case nearby && (!known || !deviceKnown):
		result.Score += s.config.NearbyLocationWeight
		result.Factors = append(result.Factors, FactorNearbyLocation)
	}

	return result
}

// ShouldSuspend reports whether the assessment reaches the suspension threshold.
func (s *RiskScorer) ShouldSuspend(a RiskAssessment) bool {
	return a.Score >= s.config.SuspendThreshold
}
