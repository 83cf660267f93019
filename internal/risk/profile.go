package risk

// Profile names a risk-appetite preset
type Profile string

const (
	ProfileDayTrading Profile = "day_trading"
	ProfileSwing      Profile = "swing"
	ProfileBalanced   Profile = "balanced"
	ProfileLongTerm   Profile = "long_term"
)

// ParseProfile maps a profile name to a known Profile; unknown values fall
// back to balanced.
func ParseProfile(name string) Profile {
	switch Profile(name) {
	case ProfileDayTrading, ProfileSwing, ProfileBalanced, ProfileLongTerm:
		return Profile(name)
	default:
		return ProfileBalanced
	}
}

// ProfileConfig holds the per-profile multipliers and sizing parameters
type ProfileConfig struct {
	ATRStopMultiplier  float64 `json:"atr_stop_multiplier"`   // minimum stop distance in ATRs
	MinRiskReward      float64 `json:"min_risk_reward"`       // minimum reward:risk for the take-profit
	EntryBufferATRMult float64 `json:"entry_buffer_atr_mult"` // SL/TP clearance from the entry band, in ATRs
	RiskPerTradePct    float64 `json:"risk_per_trade_pct"`    // % of account capital risked per trade
}

// DefaultProfiles returns the standard profile table
func DefaultProfiles() map[Profile]ProfileConfig {
	return map[Profile]ProfileConfig{
		ProfileDayTrading: {
			ATRStopMultiplier:  1.0,
			MinRiskReward:      1.5,
			EntryBufferATRMult: 0.6,
			RiskPerTradePct:    0.5,
		},
		ProfileSwing: {
			ATRStopMultiplier:  1.5,
			MinRiskReward:      2.0,
			EntryBufferATRMult: 0.8,
			RiskPerTradePct:    1.5,
		},
		ProfileBalanced: {
			ATRStopMultiplier:  1.2,
			MinRiskReward:      1.8,
			EntryBufferATRMult: 0.7,
			RiskPerTradePct:    1.0,
		},
		ProfileLongTerm: {
			ATRStopMultiplier:  2.0,
			MinRiskReward:      2.5,
			EntryBufferATRMult: 1.0,
			RiskPerTradePct:    2.0,
		},
	}
}

// ProfileSettings resolves the config for a profile from the table, falling
// back to balanced for anything missing.
func ProfileSettings(profiles map[Profile]ProfileConfig, p Profile) ProfileConfig {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	if cfg, ok := profiles[p]; ok {
		return cfg
	}
	if cfg, ok := profiles[ProfileBalanced]; ok {
		return cfg
	}
	return DefaultProfiles()[ProfileBalanced]
}
