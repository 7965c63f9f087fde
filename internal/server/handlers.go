package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"

	"github.com/fmueller/vidscribe/internal/apperr"
	"github.com/fmueller/vidscribe/internal/pipeline"
	"github.com/fmueller/vidscribe/internal/transcript"
	"github.com/fmueller/vidscribe/internal/vocab"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const defaultUploadExt = ".mp4"

var uploadExtPattern = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

type errorBody struct {
	Error string `json:"error"`
}

func health(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, []byte(`{"status":"ok"}`))
}

func transcribe(data *Data) echo.HandlerFunc {
	return func(c echo.Context) error {
		media, err := c.FormFile("media")
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "Missing 'media' file"})
		}

		words, err := requestVocabulary(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
		}

		src, err := media.Open()
		if err != nil {
			return fmt.Errorf("open uploaded media: %w", err)
		}
		defer src.Close()

		mediaPath, cleanup, err := pipeline.SpoolMedia(data.Settings.TempDir, "vidscribe-upload-", uploadExt(media.Filename), src)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := data.Transcriber.Run(c.Request().Context(), pipeline.Job{MediaPath: mediaPath, Vocabulary: words})
		if err != nil {
			data.log().Warn("transcription request failed",
				zap.String("upload", media.Filename),
				zap.Stringer("kind", apperr.KindOf(err)),
				zap.Error(err),
			)
			return c.JSON(statusFor(err), errorBody{Error: err.Error()})
		}

		body, err := transcript.Format(res).JSON()
		if err != nil {
			return fmt.Errorf("encode transcript: %w", err)
		}
		return c.JSONBlob(http.StatusOK, body)
	}
}

// requestVocabulary reads the optional vocab field, sent either as a plain
// form value or as a file part.
func requestVocabulary(c echo.Context) ([]string, error) {
	if text := c.FormValue("vocab"); text != "" {
		return vocab.ParseText(text), nil
	}

	fh, err := c.FormFile("vocab")
	if err != nil {
		// No vocab part at all is the common case.
		return nil, nil
	}
	return readVocabularyPart(fh)
}

func readVocabularyPart(fh *multipart.FileHeader) ([]string, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open vocabulary upload: %w", err)
	}
	defer f.Close()

	return vocab.Parse(f)
}

func uploadExt(filename string) string {
	ext := filepath.Ext(filename)
	if !uploadExtPattern.MatchString(ext) {
		return defaultUploadExt
	}
	return ext
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInputNotFound:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorHandler renders framework and handler errors as {"error": message}.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
		} else {
			log.Error("request error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, errorBody{Error: msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
