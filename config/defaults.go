package config

import "epgmerge/consts"

const (
	defaultTimezonePolicy = TimezonePolicyUTC
	defaultTimezoneRegion = "Europe/Madrid"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Input:  consts.INPUT_FILE,
			Output: consts.OUTPUT_FILE,
			Log:    consts.LOG_FILE,
		},
		HTTP: HTTP{
			UserAgent: consts.UA,
		},
		Timezone: Timezone{
			Policy: defaultTimezonePolicy,
			Region: defaultTimezoneRegion,
		},
		Output: Output{
			GeneratorName:       consts.GENERATOR_NAME,
			GeneratorTimeFormat: consts.GENERATOR_TIME_FORMAT,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
