// Package config gathers the settings that do not travel in the request:
// logging knobs and the build metadata the runner exports.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/koustreak/s3-resource/internal/errs"
	"github.com/koustreak/s3-resource/internal/logger"
)

// EnvPrefix prefixes every setting read from the environment,
// e.g. S3_RESOURCE_LOG_LEVEL.
const EnvPrefix = "S3_RESOURCE"

type Config struct {
	Log   LogConfig
	Build BuildConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// BuildConfig is the build metadata the runner sets for in and out.
type BuildConfig struct {
	ID           string
	Name         string
	JobName      string
	PipelineName string
	TeamName     string
	ExternalURL  string
}

// Load reads settings from the environment after applying envFiles. With
// no envFiles a ".env" in the working directory is used when present.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to load env file", err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")

	// Runner metadata is unprefixed.
	for key, env := range map[string]string{
		"build_id":            "BUILD_ID",
		"build_name":          "BUILD_NAME",
		"build_job_name":      "BUILD_JOB_NAME",
		"build_pipeline_name": "BUILD_PIPELINE_NAME",
		"build_team_name":     "BUILD_TEAM_NAME",
		"atc_external_url":    "ATC_EXTERNAL_URL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to bind "+env, err)
		}
	}

	return &Config{
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		Build: BuildConfig{
			ID:           v.GetString("build_id"),
			Name:         v.GetString("build_name"),
			JobName:      v.GetString("build_job_name"),
			PipelineName: v.GetString("build_pipeline_name"),
			TeamName:     v.GetString("build_team_name"),
			ExternalURL:  v.GetString("atc_external_url"),
		},
	}, nil
}

// Logger builds the process logger writing to out, tagged with build
// metadata. A nil out means stderr.
func (c *Config) Logger(out io.Writer) *logger.Logger {
	lcfg := logger.DefaultConfig()
	lcfg.Level = c.Log.Level
	lcfg.Format = c.Log.Format
	if out != nil {
		lcfg.Output = out
	}

	ctx := logger.New(lcfg).With()
	for _, f := range []struct{ key, val string }{
		{"team", c.Build.TeamName},
		{"pipeline", c.Build.PipelineName},
		{"job", c.Build.JobName},
		{"build", c.Build.Name},
		{"build_id", c.Build.ID},
		{"atc", c.Build.ExternalURL},
	} {
		if f.val != "" {
			ctx = ctx.Str(f.key, f.val)
		}
	}
	return ctx.Logger()
}
