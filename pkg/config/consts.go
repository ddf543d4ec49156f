package config

// EnvPrefix is the envconfig prefix shared by every variable.
const EnvPrefix = "SELLERHUB"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "SELLERHUB_APP_ENV"
	EnvPort      = "SELLERHUB_APP_PORT"
	EnvDBDSN     = "SELLERHUB_DB_DSN"
	EnvDBHost    = "SELLERHUB_DB_HOST"
	EnvDBUser    = "SELLERHUB_DB_USER"
	EnvDBName    = "SELLERHUB_DB_NAME"
	EnvRedisURL  = "SELLERHUB_REDIS_URL"
	EnvJWTSecret = "SELLERHUB_JWT_SECRET"
)
