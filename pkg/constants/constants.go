package constants

const (
	AppName      = "dentaldesk"
	ConfigName   = "config"
	ConfigFormat = "yaml"
	EnvPrefix    = "DENTALDESK"
)
