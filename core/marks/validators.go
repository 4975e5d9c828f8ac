package marks

import (
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adrap/core"
)

var (
	rollNoTag  = "rollno"
	rollNoText = "{0} must be a positive whole number"
)

// InitValidators registers the roll number validator on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(rollNoTag, rollNoValidation)
	core.RegisterCustomTranslation(validate, translator, rollNoTag, rollNoText)
}

// rollNoValidation only accepts strictly positive base-10 integers.
func rollNoValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return err == nil && n > 0
}
