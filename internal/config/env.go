package config

import (
	"github.com/JaimeStill/binsort/internal/alerts"
	"github.com/JaimeStill/binsort/internal/bins"
	"github.com/JaimeStill/binsort/internal/detection"
	"github.com/JaimeStill/binsort/internal/ingest"
	"github.com/JaimeStill/binsort/internal/live"
	"github.com/JaimeStill/binsort/pkg/database"
	"github.com/JaimeStill/binsort/pkg/storage"
)

var databaseEnv = &database.Env{
	Driver:          "BINSORT_DB_DRIVER",
	Path:            "BINSORT_DB_PATH",
	Host:            "BINSORT_DB_HOST",
	Port:            "BINSORT_DB_PORT",
	Name:            "BINSORT_DB_NAME",
	User:            "BINSORT_DB_USER",
	Password:        "BINSORT_DB_PASSWORD",
	SSLMode:         "BINSORT_DB_SSL_MODE",
	MaxOpenConns:    "BINSORT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BINSORT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BINSORT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BINSORT_DB_CONN_TIMEOUT",
	AutoMigrate:     "BINSORT_DB_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	Backend:          "BINSORT_STORAGE_BACKEND",
	Root:             "BINSORT_STORAGE_ROOT",
	ContainerName:    "BINSORT_STORAGE_CONTAINER_NAME",
	ConnectionString: "BINSORT_STORAGE_CONNECTION_STRING",
	AccountURL:       "BINSORT_STORAGE_ACCOUNT_URL",
	Endpoint:         "BINSORT_STORAGE_ENDPOINT",
	Region:           "BINSORT_STORAGE_REGION",
	AccessKeyID:      "BINSORT_STORAGE_ACCESS_KEY_ID",
	SecretAccessKey:  "BINSORT_STORAGE_SECRET_ACCESS_KEY",
	MaxListSize:      "BINSORT_STORAGE_MAX_LIST_SIZE",
}

var binsEnv = &bins.Env{
	Capacity: "BINSORT_BIN_CAPACITY",
}

var ingestEnv = &ingest.Env{
	MaxFileSize: "BINSORT_INGEST_MAX_FILE_SIZE",
	Workers:     "BINSORT_INGEST_WORKERS",
}

var detectorEnv = &detection.Env{
	Model:              "BINSORT_DETECTOR_MODEL",
	ModelConfig:        "BINSORT_DETECTOR_MODEL_CONFIG",
	Format:             "BINSORT_DETECTOR_FORMAT",
	Labels:             "BINSORT_DETECTOR_LABELS",
	InputSize:          "BINSORT_DETECTOR_INPUT_SIZE",
	Threshold:          "BINSORT_DETECTOR_THRESHOLD",
	Fallback:           "BINSORT_DETECTOR_FALLBACK",
	FallbackConfidence: "BINSORT_DETECTOR_FALLBACK_CONFIDENCE",
}

var alertsEnv = &alerts.Env{
	QueueSize:     "BINSORT_ALERTS_QUEUE_SIZE",
	Timeout:       "BINSORT_ALERTS_TIMEOUT",
	SMSAccountSID: "BINSORT_ALERTS_SMS_ACCOUNT_SID",
	SMSAuthToken:  "BINSORT_ALERTS_SMS_AUTH_TOKEN",
	SMSFrom:       "BINSORT_ALERTS_SMS_FROM",
	SMSTo:         "BINSORT_ALERTS_SMS_TO",
	EmailHost:     "BINSORT_ALERTS_EMAIL_HOST",
	EmailPort:     "BINSORT_ALERTS_EMAIL_PORT",
	EmailAddress:  "BINSORT_ALERTS_EMAIL_ADDRESS",
	EmailPassword: "BINSORT_ALERTS_EMAIL_PASSWORD",
	EmailReceiver: "BINSORT_ALERTS_EMAIL_RECEIVER",
}

var liveEnv = &live.Env{
	Watch:      "BINSORT_LIVE_WATCH",
	Debounce:   "BINSORT_LIVE_DEBOUNCE",
	SendBuffer: "BINSORT_LIVE_SEND_BUFFER",
}
