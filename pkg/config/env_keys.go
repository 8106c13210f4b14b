package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// PERMITS_* tags so the prefix stays informational.
const EnvPrefix = "permits"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "PERMITS_DB_DSN"
	EnvDBHost = "PERMITS_DB_HOST"
	EnvDBUser = "PERMITS_DB_USER"
	EnvDBName = "PERMITS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
