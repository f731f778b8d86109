package config

const (
	EnvPrefix = "CMDR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "CMDR_DB_DSN"
	EnvDBHost = "CMDR_DB_HOST"
	EnvDBUser = "CMDR_DB_USER"
	EnvDBName = "CMDR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
