package config

type AppConfig struct {
	Server  ServerConfig
	Billing BillingConfig
	Log     LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	billingCfg, err := LoadBilling()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server:  serverCfg,
		Billing: billingCfg,
		Log:     logCfg,
	}, nil
}
