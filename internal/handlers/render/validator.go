package render

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	checks "github.com/nkiryanov/walletledger/internal/service/validate"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("tckn", validateTCKN)
	v.RegisterTagNameFunc(useJSONTagNames)
	return v
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func validateTCKN(fl validator.FieldLevel) bool {
	return checks.TCKN(fl.Field().String()) == nil
}
