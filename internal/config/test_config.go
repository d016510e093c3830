package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8081,
		},
		ShopAPI: ShopAPIConfig{
			BaseURL:      "http://localhost:9000",
			Timeout:      2 * time.Second,
			LoginTimeout: time.Second,
			RetryMax:     0,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
		Session: SessionConfig{
			CookieName:       "ef_session",
			DeviceCookieName: "ef_device",
			StepUpTTL:        time.Minute,
			CheckWait:        time.Second,
		},
		Notify: NotifyConfig{
			AppVersion:  "0.0.0-test",
			DueSoonDays: 3,
		},
	}
}
