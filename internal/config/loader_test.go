package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/glyco/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"GLYCO_CONFIG",
		"GLYCO_LOG_LEVEL",
		"GLYCO_ADDR",
		"GLYCO_MODEL_PATH",
		"GLYCO_STORE_PATH",
		"GLYCO_THRESHOLD",
		"GLYCO_SECRET_KEY",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "diabetes_model.json")
				convey.So(cfg.StorePath, convey.ShouldEqual, "data/predictions")
				convey.So(cfg.Threshold, convey.ShouldEqual, 0.502)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("GLYCO_ADDR", ":8080")
			_ = os.Setenv("GLYCO_MODEL_PATH", "/models/risk.json")
			_ = os.Setenv("GLYCO_STORE_PATH", "/var/lib/glyco")
			_ = os.Setenv("GLYCO_THRESHOLD", "0.6")
			_ = os.Setenv("GLYCO_SECRET_KEY", "s3cret")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ModelPath, convey.ShouldEqual, "/models/risk.json")
				convey.So(cfg.StorePath, convey.ShouldEqual, "/var/lib/glyco")
				convey.So(cfg.Threshold, convey.ShouldEqual, 0.6)
				convey.So(cfg.SecretKey, convey.ShouldEqual, "s3cret")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			path := filepath.Join(t.TempDir(), "glyco.yaml")
			body := "addr: \":7070\"\nthreshold: 0.55\nlog_level: debug\n"
			convey.So(os.WriteFile(path, []byte(body), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("GLYCO_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the file should layer over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Threshold, convey.ShouldEqual, 0.55)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				// Untouched keys keep their defaults.
				convey.So(cfg.ModelPath, convey.ShouldEqual, "diabetes_model.json")
			})
		})

		convey.Convey("When env overrides a file value", func() {
			clearConfigEnvVars()
			path := filepath.Join(t.TempDir(), "glyco.yaml")
			convey.So(os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("GLYCO_CONFIG", path)
			_ = os.Setenv("GLYCO_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env should win", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the threshold is out of range", func() {
			clearConfigEnvVars()
			_ = os.Setenv("GLYCO_THRESHOLD", "1.5")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading should fail with the invalid-config kind", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}
