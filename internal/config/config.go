package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Order    OrderConfig    `yaml:"order"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type OrderConfig struct {
	// TxTimeout bounds one order mutation transaction end to end.
	TxTimeout time.Duration `yaml:"txTimeout"`
	// LockWaitTimeout bounds the wait for the per-order row lock, in whole
	// seconds (it is applied as innodb_lock_wait_timeout on the session).
	LockWaitTimeout time.Duration `yaml:"lockWaitTimeout"`
	// MaxRetryAttempts caps automatic retries after a storage deadlock.
	MaxRetryAttempts int `yaml:"maxRetryAttempts"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Load() (*Config, error) {
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 3306)
	viper.SetDefault("DB_USER", "kalpa")
	viper.SetDefault("DB_PASSWORD", "secret")
	viper.SetDefault("DB_NAME", "kalpa")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("ORDER_TX_TIMEOUT", "5s")
	viper.SetDefault("ORDER_LOCK_WAIT_TIMEOUT", "3s")
	viper.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	viper.SetDefault("LOG_LEVEL", "info")

	connMaxLifetime, err := time.ParseDuration(viper.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, err
	}

	txTimeout, err := time.ParseDuration(viper.GetString("ORDER_TX_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	lockWaitTimeout, err := time.ParseDuration(viper.GetString("ORDER_LOCK_WAIT_TIMEOUT"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Order: OrderConfig{
			TxTimeout:        txTimeout,
			LockWaitTimeout:  lockWaitTimeout,
			MaxRetryAttempts: viper.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	return cfg, nil
}
