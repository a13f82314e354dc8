package config

func loadProductionConfig(cfg *Config) {
	cfg.ServerHost = "0.0.0.0"
	cfg.UploadDir = "/data/uploads"

	loadEnvOverrides(cfg)
}
