package handlers

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zapshift/parcel-server/internal/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler renders errors returned by handlers and middleware. Errors
// that are neither AppErrors nor fiber errors are logged and hidden behind
// a generic internal error.
func ErrorHandler(log logrus.FieldLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr apperr.AppError
		if errors.As(err, &appErr) {
			return c.Status(appErr.HTTPCode()).JSON(ErrorResponse{
				Code:    appErr.ErrorCode(),
				Message: appErr.Message(),
				Details: appErr.Details(),
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    statusCode(fiberErr.Code),
				Message: fiberErr.Message,
			})
		}

		log.WithError(err).WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
		}).Error("request failed")
		return c.Status(apperr.ErrInternal.HTTPCode()).JSON(ErrorResponse{
			Code:    apperr.ErrInternal.ErrorCode(),
			Message: apperr.ErrInternal.Message(),
		})
	}
}

// statusCode turns 404 into NOT_FOUND.
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(text, " ", "_"))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes the request body into dst and validates it.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.WithDetails(apperr.ErrBadRequest, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.WithDetails(apperr.ErrBadRequest, validationDetails(err))
	}
	return nil
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fe.Field()+": "+fe.Tag()+"="+fe.Param())
			continue
		}
		msgs = append(msgs, fe.Field()+": "+fe.Tag())
	}
	return strings.Join(msgs, "; ")
}
