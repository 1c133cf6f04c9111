package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

type Environment string

const (
	Live Environment = "live"
	Dev              = "dev"
)

type PNGConfig struct {
	Env      Environment
	LogLevel zerolog.Level
	Postgres PostgresConfig
	Archive  ArchiveConfig
	Console  ConsoleConfig
	Decode   DecodeConfig
}

type PostgresConfig struct {
	User     string
	Password string
	Hostname string
	Port     int
	DbName   string
	LogLevel tracelog.LogLevel
	MinConn  int32
	MaxConn  int32

	// How many times to try reaching the database before giving up.
	ConnectAttempts int
}

func (info PostgresConfig) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%d dbname=%s", info.User, info.Password, info.Hostname, info.Port, info.DbName)
}

// Original files can be copied to an S3-compatible bucket when they are
// stored. Leave Bucket empty to turn this off.
type ArchiveConfig struct {
	Endpoint string
	Region   string
	Key      string
	Secret   string
	Bucket   string
}

func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

type ConsoleConfig struct {
	// Images must be narrower than this to be printed without --fit.
	MaxWidth int

	// Hex color printed behind transparent cells. Empty means the terminal's own background.
	Background string
}

type DecodeConfig struct {
	// Number of files decoded at once by batch commands.
	Workers int
}
