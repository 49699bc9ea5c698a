package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_ApplyPlatformDefaults(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		env      map[string]string
		wantAddr string
		wantDB   string
	}{
		{
			name:     "platform variables fill defaults",
			cfg:      Config{Addr: "0.0.0.0:8080"},
			env:      map[string]string{"DATABASE_URL": "postgres://db/joki", "PORT": "3000"},
			wantAddr: "0.0.0.0:3000",
			wantDB:   "postgres://db/joki",
		},
		{
			name:     "explicit values win",
			cfg:      Config{Addr: "127.0.0.1:9000", DatabaseURL: "postgres://explicit"},
			env:      map[string]string{"DATABASE_URL": "postgres://db/joki", "PORT": "3000"},
			wantAddr: "127.0.0.1:9000",
			wantDB:   "postgres://explicit",
		},
		{
			name:     "nothing set keeps memory store",
			cfg:      Config{Addr: "0.0.0.0:8080"},
			env:      map[string]string{"DATABASE_URL": "", "PORT": ""},
			wantAddr: "0.0.0.0:8080",
			wantDB:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := tt.cfg
			cfg.applyPlatformDefaults()
			assert.Equal(t, tt.wantAddr, cfg.Addr)
			assert.Equal(t, tt.wantDB, cfg.DatabaseURL)
		})
	}
}
