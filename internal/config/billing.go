package config

import "github.com/caarlos0/env/v11"

type BillingConfig struct {
	MaxDeductPerCall          int    `env:"MAX_DEDUCT_PER_CALL" envDefault:"5"`
	AbandonedThresholdMinutes int    `env:"ABANDONED_THRESHOLD_MINUTES" envDefault:"5"`
	AutoEndBufferMinutes      int    `env:"AUTO_END_BUFFER_MINUTES" envDefault:"2"`
	MissedWindowGraceMinutes  int    `env:"MISSED_WINDOW_GRACE_MINUTES" envDefault:"15"`
	RequiredParticipants      int    `env:"REQUIRED_PARTICIPANTS" envDefault:"1"`
	MaxParticipants           int    `env:"MAX_PARTICIPANTS" envDefault:"3"`
	SweepCron                 string `env:"SWEEP_CRON" envDefault:"@every 1m"`
}

func LoadBilling() (BillingConfig, error) {
	var cfg BillingConfig
	err := env.Parse(&cfg)
	return cfg, err
}
