package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom tags used by the review DTOs to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

var fieldMessages = map[string]string{
	"SongID":  "Please choose a song to review.",
	"Rating":  "Please provide a rating between 1 and 5.",
	"Title":   "Please provide a valid title.",
	"Comment": "Please provide a valid comment.",
}

// fieldErrors maps binding failures to user facing messages keyed by json field.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.StructField()]
		if !ok {
			msg = "Invalid value."
		}
		out[jsonName(fe.StructField())] = msg
	}
	return out
}

func jsonName(structField string) string {
	if structField == "SongID" {
		return "song_id"
	}
	return strings.ToLower(structField)
}
