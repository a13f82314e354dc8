package config

func loadTestConfig(cfg *Config) {
	cfg.DatabaseDebug = false
	cfg.ServerHost = "127.0.0.1"
	// Port 0 so the listener picks a free port.
	cfg.ServerPort = 0
	cfg.AdminEmail = "admin@example.com"
	cfg.AdminName = "Admin"
	cfg.AdminPassword = "correct horse battery staple"
	cfg.UploadDir = "./tmp/uploads"
}
