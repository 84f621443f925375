package kafka_config

import "time"

const (
	// Without brokers the services run with events disabled.
	DefaultKafkaEnabled  = false
	DefaultKafkaBrokers  = "localhost:9092"
	DefaultKafkaClientID = "innkeep"

	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1 // Require all replicas
	DefaultProducerCompression  = "snappy"

	DefaultConsumerStartOffset      = -2 // Oldest; payment outcomes must not be skipped
	DefaultConsumerMaxWait          = 500 * time.Millisecond
	DefaultConsumerSessionTimeout   = 10 * time.Second
	DefaultConsumerRebalanceTimeout = 60 * time.Second
	DefaultConsumerMaxRetries       = 3
	DefaultConsumerRetryBackoff     = 500 * time.Millisecond
)
