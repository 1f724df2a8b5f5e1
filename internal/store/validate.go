package store

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// entry is the input contract shared by Add and Remove. Names made only of
// whitespace count as blank.
type entry struct {
	Name     string  `validate:"required,notblank"`
	Quantity float64 `validate:"finite"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		return isFinite(fl.Field().Float())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

func validateEntry(name string, qty float64) error {
	err := validate.Struct(entry{Name: name, Quantity: qty})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Field() {
		case "Name":
			problems = append(problems, "item name must not be blank")
		case "Quantity":
			problems = append(problems, fmt.Sprintf("quantity %v for %q is not a number", qty, name))
		default:
			problems = append(problems, fe.Error())
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidItem, strings.Join(problems, "; "))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
