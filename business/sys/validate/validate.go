// Package validate contains the support for validating models.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/ardanlabs/powchain/foundation/blockchain/database"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// validate holds the settings and caches for validating request struct values.
var validate *validator.Validate

// translator is a cache of locale and translation information.
var translator ut.Translator

func init() {

	// Instantiate a validator.
	validate = validator.New()

	// Create a translator for english so the error messages are
	// more human-readable than technical.
	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")

	// Register the english error messages for use.
	en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Account ids must be hex encoded addresses.
	validate.RegisterValidation("accountid", func(fl validator.FieldLevel) bool {
		return database.AccountID(fl.Field().String()).IsAccountID()
	})
	validate.RegisterTranslation("accountid", translator,
		func(ut ut.Translator) error {
			return ut.Add("accountid", "{0} must be a hex encoded account id", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("accountid", fe.Field())
			return t
		},
	)
}

// Check validates the provided model against it's declared tags.
func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		// Use a type assertion to get the real error value.
		var verrors validator.ValidationErrors
		if !errors.As(err, &verrors) {
			return err
		}

		var fields FieldErrors
		for _, verror := range verrors {
			field := FieldError{
				Field: verror.Field(),
				Err:   verror.Translate(translator),
			}
			fields = append(fields, field)
		}

		return fields
	}

	return nil
}
