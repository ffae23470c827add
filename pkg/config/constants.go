package config

const (
	EnvPrefix = "IMPULSA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv     = "IMPULSA_APP_ENV"
	EnvPort       = "IMPULSA_APP_PORT"
	EnvDBDSN      = "IMPULSA_DB_DSN"
	EnvDBHost     = "IMPULSA_DB_HOST"
	EnvDBUser     = "IMPULSA_DB_USER"
	EnvDBName     = "IMPULSA_DB_NAME"
	EnvRedisURL   = "IMPULSA_REDIS_URL"
	EnvJWTSecret  = "IMPULSA_JWT_SECRET"
	EnvJWTIssuer  = "IMPULSA_JWT_ISSUER"
	EnvJWTExpMins = "IMPULSA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
