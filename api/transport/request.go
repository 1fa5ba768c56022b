package transport

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/fastygo/learnpath/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type GenerateRequest struct {
	Topic string `json:"topic" validate:"max=200"`
}

type SaveCandidatesRequest struct {
	Titles []string `json:"titles" validate:"required_without=All"`
	All    bool     `json:"all"`
}

type CreateTasksRequest struct {
	Titles   []string `json:"titles" validate:"dive,required"`
	Category string   `json:"category" validate:"max=200"`
}

type RenameTaskRequest struct {
	Title string `json:"title" validate:"required,max=500"`
}

// Decode unmarshals body into dst and validates its tags. Failures are INVALID domain errors.
func Decode(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)
	}
	if err := validate.Struct(dst); err != nil {
		return domain.WrapError(domain.ErrCodeInvalid, describe(err), err)
	}
	return nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "invalid payload"
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
	}
	return "invalid payload: " + strings.Join(fields, ", ")
}
