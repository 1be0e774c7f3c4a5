package config

import (
	"github.com/JaimeStill/courier-sign/pkg/database"
	"github.com/JaimeStill/courier-sign/pkg/logging"
	"github.com/JaimeStill/courier-sign/pkg/storage"
)

var loggingEnv = &logging.Env{
	Level:     "LOGGING_LEVEL",
	Format:    "LOGGING_FORMAT",
	Service:   "LOGGING_SERVICE",
	AddSource: "LOGGING_ADD_SOURCE",
}

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	SSLMode:         "DATABASE_SSL_MODE",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Backend:        "STORAGE_BACKEND",
	BasePath:       "STORAGE_BASE_PATH",
	MaxUploadSize:  "STORAGE_MAX_UPLOAD_SIZE",
	MinIOEndpoint:  "STORAGE_MINIO_ENDPOINT",
	MinIOAccessKey: "STORAGE_MINIO_ACCESS_KEY",
	MinIOSecretKey: "STORAGE_MINIO_SECRET_KEY",
	MinIOBucket:    "STORAGE_MINIO_BUCKET",
	MinIOUseSSL:    "STORAGE_MINIO_USE_SSL",
}
