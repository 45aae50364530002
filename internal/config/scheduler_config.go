package config

// SchedulerConfig configures watch mode.
type SchedulerConfig struct {
	Cron           string `json:"cron,omitempty" yaml:"cron,omitempty" validate:"required,cronspec"`
	RunImmediately bool   `json:"run_immediately" yaml:"run_immediately"`
}

func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Cron:           DefaultSchedulerCron,
		RunImmediately: false,
	}
}
