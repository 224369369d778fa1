package options

import (
	"errors"
	"fmt"
	"sync"

	validator "github.com/go-playground/validator/v10"
)

var (
	checkOnce sync.Once
	checker   *validator.Validate
)

// checkValue runs a converted option value through go-playground/validator
// with the given tag constraint. The returned error reads as a sentence
// fragment suited to CLI messages ("is not a valid max=65535").
func checkValue(val any, constraint string) error {
	checkOnce.Do(func() { checker = validator.New() })

	err := checker.Var(val, constraint)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		tag := verrs[0].Tag()
		if param := verrs[0].Param(); param != "" {
			tag += "=" + param
		}

		return fmt.Errorf("is not a valid %s", tag)
	}

	return fmt.Errorf("is not a valid value: %s", err)
}
