// Package server exposes the transcription pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/fmueller/vidscribe/internal/config"
	"github.com/fmueller/vidscribe/internal/pipeline"
	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Transcriber is satisfied by *pipeline.Pipeline.
type Transcriber interface {
	Run(ctx context.Context, job pipeline.Job) (transcript.Result, error)
}

// Data keeps what the handlers need. It is shared read-only between requests.
type Data struct {
	Settings    config.Settings
	Transcriber Transcriber
	Logger      *zap.Logger
}

// StartWebServer serves until the process receives a termination signal and
// closes the returned channel once the server has stopped.
func StartWebServer(data *Data) (<-chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	log := data.log()
	log.Info("starting transcription service", zap.Int("port", data.Settings.Port))

	e := NewRouter(data)
	e.Server.Addr = data.Settings.Addr()
	e.Server.ReadHeaderTimeout = 10 * time.Second
	// Transcriptions can run for many minutes, so no read/write timeouts.

	gracehttp.SetLogger(zap.NewStdLog(log))

	res := make(chan struct{}, 1)
	go func() {
		defer close(res)
		if err := gracehttp.Serve(e.Server); err != nil {
			log.Error("can't start web server", zap.Error(err))
		}
		log.Info("http server stopped")
	}()
	return res, nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("vidscribe", nil)
}

func NewRouter(data *Data) *echo.Echo {
	log := data.log()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return ulid.Make().String() },
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit(data.Settings.MaxUpload))
	promMdlw.Use(e)

	e.GET("/health", health)
	e.POST("/api/transcribe", transcribe(data))

	for _, r := range e.Routes() {
		log.Debug("route", zap.String("method", r.Method), zap.String("path", r.Path))
	}
	return e
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	})
}

func validate(data *Data) error {
	if data == nil {
		return errors.New("no server data")
	}
	if data.Transcriber == nil {
		return errors.New("no transcriber")
	}
	if err := data.Settings.Validate(); err != nil {
		return fmt.Errorf("server settings: %w", err)
	}
	return nil
}

func (d *Data) log() *zap.Logger {
	if d == nil || d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
