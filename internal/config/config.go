// Package config holds the settings shared by the CLI and the HTTP server.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/fmueller/vidscribe/internal/whisper"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/bytes"
)

const (
	DefaultPort      = 8000
	DefaultMaxUpload = "2G"
	DefaultLanguage  = "auto"
)

// Settings are read once at startup; env names are carried in the env tag
// and used in validation messages.
type Settings struct {
	Engine      string `env:"VIDSCRIBE_ENGINE" validate:"oneof=whisper-cli openai-whisper"`
	WhisperPath string `env:"VIDSCRIBE_WHISPER_PATH"`
	Python      string `env:"VIDSCRIBE_PYTHON" validate:"required"`
	FFmpeg      string `env:"VIDSCRIBE_FFMPEG" validate:"required"`
	Model       string `env:"VIDSCRIBE_MODEL" validate:"required"`
	ModelDir    string `env:"VIDSCRIBE_MODEL_DIR"`
	Language    string `env:"VIDSCRIBE_LANGUAGE" validate:"required"`
	TempDir     string `env:"VIDSCRIBE_TMPDIR"`
	MaxUpload   string `env:"VIDSCRIBE_MAX_UPLOAD" validate:"bytesize"`
	Port        int    `env:"PORT" validate:"min=1,max=65535"`
}

func Defaults() Settings {
	return Settings{
		Engine:    whisper.EngineBundled,
		Python:    "python3",
		FFmpeg:    "ffmpeg",
		Model:     whisper.DefaultModel,
		Language:  DefaultLanguage,
		MaxUpload: DefaultMaxUpload,
		Port:      DefaultPort,
	}
}

// FromEnv overlays non-empty environment values on Defaults. getenv is
// usually os.Getenv.
func FromEnv(getenv func(string) string) (Settings, error) {
	s := Defaults()
	if getenv == nil {
		return s, nil
	}

	overlay := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	overlay(&s.Engine, "VIDSCRIBE_ENGINE")
	overlay(&s.WhisperPath, "VIDSCRIBE_WHISPER_PATH")
	overlay(&s.Python, "VIDSCRIBE_PYTHON")
	overlay(&s.FFmpeg, "VIDSCRIBE_FFMPEG")
	overlay(&s.Model, "VIDSCRIBE_MODEL")
	overlay(&s.ModelDir, "VIDSCRIBE_MODEL_DIR")
	overlay(&s.Language, "VIDSCRIBE_LANGUAGE")
	overlay(&s.TempDir, "VIDSCRIBE_TMPDIR")
	overlay(&s.MaxUpload, "VIDSCRIBE_MAX_UPLOAD")

	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Settings{}, apperr.Validationf("invalid PORT %q: must be a number", v)
		}
		s.Port = port
	}

	return s, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("bytesize", func(fl validator.FieldLevel) bool {
		n, err := bytes.Parse(fl.Field().String())
		return err == nil && n > 0
	})
	return v
}

// Validate checks the settings and reports every failing field at once.
func (s Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validation("invalid settings", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	return apperr.Validationf("invalid settings: %s", strings.Join(problems, "; "))
}

// MaxUploadBytes returns MaxUpload in bytes. Call Validate first.
func (s Settings) MaxUploadBytes() int64 {
	n, err := bytes.Parse(s.MaxUpload)
	if err != nil {
		return 0
	}
	return n
}

func (s Settings) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s (got %q)", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s must be between 1 and 65535 (got %v)", fe.Field(), fe.Value())
	case "bytesize":
		return fmt.Sprintf("%s must be a size such as 512M or 2G (got %q)", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}
