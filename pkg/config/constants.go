package config

const (
	EnvPrefix = "greenmile"

	AppEnvDev  = "dev"
	AppEnvProd = "production"

	EnvAppEnv = "GREENMILE_APP_ENV"
	EnvPort   = "GREENMILE_APP_PORT"

	EnvDBDSN  = "GREENMILE_DB_DSN"
	EnvDBHost = "GREENMILE_DB_HOST"
	EnvDBUser = "GREENMILE_DB_USER"
	EnvDBName = "GREENMILE_DB_NAME"

	EnvRedisURL = "GREENMILE_REDIS_URL"

	EnvPricingTaxRates    = "GREENMILE_PRICING_TAX_RATES"
	EnvPricingFeeBrackets = "GREENMILE_PRICING_DELIVERY_FEE_BRACKETS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
