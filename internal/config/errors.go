package config

import "errors"

var (
	ErrReadingConfigFile   = errors.New("failed to read config file")
	ErrUnmarshallingConfig = errors.New("failed to unmarshal config")
	ErrEmptyKafkaBrokers   = errors.New("kafka brokers list cannot be empty")
	ErrEmptyInputTopic     = errors.New("kafka inputTopic cannot be empty")
	ErrEmptyOutputTopic    = errors.New("kafka outputTopic cannot be empty")
	ErrEmptyKafkaGroupID   = errors.New("kafka groupID cannot be empty")
	ErrInvalidWindowSize   = errors.New("pipeline windowSize must be positive")
	ErrInvalidGracePeriod  = errors.New("pipeline gracePeriod must be positive")
	ErrInvalidShardCount   = errors.New("pipeline shards must be positive")
	ErrConfigFileMissing   = errors.New("config file not found")
)
