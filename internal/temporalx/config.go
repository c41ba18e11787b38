package temporalx

import (
	"time"

	"github.com/yungbote/mentalgym-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	DialTimeout time.Duration
	DialMaxWait time.Duration
	// AutoRegisterNamespace is for local/self-hosted Temporal only.
	AutoRegisterNamespace bool
	NamespaceRetention    time.Duration
}

func LoadConfig() Config {
	return Config{
		Address:   envutil.String("TEMPORAL_ADDRESS", ""),
		Namespace: envutil.String("TEMPORAL_NAMESPACE", "mentalgym"),
		TaskQueue: envutil.String("TEMPORAL_TASK_QUEUE", "mentalgym"),

		ClientCertPath: envutil.String("TEMPORAL_CLIENT_CERT_PATH", ""),
		ClientKeyPath:  envutil.String("TEMPORAL_CLIENT_KEY_PATH", ""),
		ClientCAPath:   envutil.String("TEMPORAL_CLIENT_CA_PATH", ""),

		DialTimeout:           envutil.Duration("TEMPORAL_DIAL_TIMEOUT", 5*time.Second),
		DialMaxWait:           envutil.Duration("TEMPORAL_DIAL_MAX_WAIT", time.Minute),
		AutoRegisterNamespace: envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false),
		NamespaceRetention:    envutil.Duration("TEMPORAL_NAMESPACE_RETENTION", 7*24*time.Hour),
	}
}

func (c Config) Enabled() bool { return c.Address != "" }

func (c Config) tlsEnabled() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}
