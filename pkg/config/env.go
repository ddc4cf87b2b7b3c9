package config

const (
	EnvPrefix = "BIKURIM"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv    = "BIKURIM_APP_ENV"
	EnvPort      = "BIKURIM_APP_PORT"
	EnvDBDSN     = "BIKURIM_DB_DSN"
	EnvDBHost    = "BIKURIM_DB_HOST"
	EnvDBUser    = "BIKURIM_DB_USER"
	EnvDBName    = "BIKURIM_DB_NAME"
	EnvRedisURL  = "BIKURIM_REDIS_URL"
	EnvGeminiKey = "BIKURIM_GOOGLE_API_KEY"

	// EnvTestDBDSN points repository tests at a disposable Postgres database.
	EnvTestDBDSN = "BIKURIM_TEST_DB_DSN"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
