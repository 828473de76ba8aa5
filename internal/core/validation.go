package core

import (
	"errors"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	validate  = validator.New()
	nonBlank  = regexp.MustCompile(`\S`)
	yearMonth = "2006-01"
)

func init() {
	// "2024-12"
	_ = validate.RegisterValidation("yearmonth", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(yearMonth, fl.Field().String())
		return err == nil
	})
	// not empty and not only whitespace
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return nonBlank.MatchString(fl.Field().String())
	})
}

type profileName struct {
	Name string `validate:"notblank,max=10"`
}

// ValidateProfileName checks the name rules that do not depend on other
// profiles: not blank and at most MaxProfileNameLength characters.
func ValidateProfileName(name string) error {
	err := validate.Struct(profileName{Name: name})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "notblank":
			return ErrEmptyName
		case "max":
			return ErrNameTooLong
		}
	}
	return ErrValidation
}

// ValidateYearMonth checks a "YYYY-MM" month selector.
func ValidateYearMonth(s string) error {
	if err := validate.Var(s, "yearmonth"); err != nil {
		return ErrInvalidMonth
	}
	return nil
}
