package config

import (
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Edit this for your own machine. Live deployments keep their own copy.
var Config = PNGConfig{
	Env:      Dev,
	LogLevel: zerolog.InfoLevel,
	Postgres: PostgresConfig{
		User:            "pngscope",
		Password:        "password",
		Hostname:        "localhost",
		Port:            5432,
		DbName:          "pngscope",
		LogLevel:        tracelog.LogLevelWarn,
		MinConn:         1,
		MaxConn:         4,
		ConnectAttempts: 5,
	},
	Archive: ArchiveConfig{
		Endpoint: "http://localhost:80",
		Region:   "dummy-region",
		Key:      "dummy",
		Secret:   "dummy",
		Bucket:   "",
	},
	Console: ConsoleConfig{
		MaxWidth:   80,
		Background: "",
	},
	Decode: DecodeConfig{
		Workers: 4,
	},
}
