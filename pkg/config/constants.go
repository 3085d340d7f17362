package config

const (
	// EnvPrefix is passed to envconfig; individual tags already carry it.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "REPARALO_DB_DSN"
	EnvDBHost = "REPARALO_DB_HOST"
	EnvDBUser = "REPARALO_DB_USER"
	EnvDBName = "REPARALO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
