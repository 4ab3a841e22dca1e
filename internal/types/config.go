package types

type RunMode string

const (
	// ModeLocal runs the API server locally
	ModeLocal RunMode = "local"
	// ModeAPI runs the API server
	ModeAPI RunMode = "api"
	// ModeAWSLambdaAPI serves the API through an AWS Lambda handler
	ModeAWSLambdaAPI RunMode = "aws_lambda_api"
)

type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// CRMProvider selects the backend that stores donors and donations
type CRMProvider string

const (
	CRMProviderSalesforce CRMProvider = "salesforce"
	CRMProviderPostgres   CRMProvider = "postgres"
)

// PubSubType selects the transport for reconciliation events
type PubSubType string

const (
	MemoryPubSub PubSubType = "memory"
	KafkaPubSub  PubSubType = "kafka"
)
