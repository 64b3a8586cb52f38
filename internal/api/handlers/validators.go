package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kimbia-events/server/internal/api/problem"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decodeAndValidate decodes the request body and runs struct validation,
// answering a validation problem and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, env string) bool {
	if err := decodeJSON(r, dst); err != nil {
		problem.Validation(w, r, err, env)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var fieldErrors validator.ValidationErrors
		var opts []problem.Option
		if errors.As(err, &fieldErrors) {
			errs := map[string]any{}
			for _, fe := range fieldErrors {
				errs[strings.ToLower(fe.Field())] = "failed " + fe.Tag() + " validation"
			}
			opts = append(opts, problem.WithErrors(errs))
		}
		problem.Validation(w, r, err, env, opts...)
		return false
	}
	return true
}
