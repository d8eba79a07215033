package update

import (
	"os"
	"strconv"
	"strings"
)

type RuntimeConfig struct {
	InitialFilter    string
	QuotaBarWidth    int
	PaletteCharLimit int
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		InitialFilter:    "due",
		QuotaBarWidth:    24,
		PaletteCharLimit: 80,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("HABITD_INITIAL_FILTER"); ok {
		cfg.InitialFilter = v
	}
	if v, ok := getEnvInt("HABITD_QUOTA_BAR_WIDTH"); ok && v > 0 {
		cfg.QuotaBarWidth = v
	}
	if v, ok := getEnvInt("HABITD_PALETTE_CHAR_LIMIT"); ok && v > 0 {
		cfg.PaletteCharLimit = v
	}
	return cfg
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}
