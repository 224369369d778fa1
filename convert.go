package options

import (
	"strconv"
	"time"
)

// Converter turns the raw text of an option argument into a typed value.
// The Name is used as the default metavar (uppercased) and in conversion
// error messages.
type Converter struct {
	Name  string
	Parse func(text string) (any, error)
}

func (c Converter) given() bool { return c.Parse != nil }

// Built-in converters for the usual scalar option arguments. Custom
// converters are plain Converter literals.
var (
	String = Converter{
		Name:  "string",
		Parse: func(text string) (any, error) { return text, nil },
	}

	Int = Converter{
		Name: "int",
		Parse: func(text string) (any, error) {
			return strconv.Atoi(text)
		},
	}

	Float = Converter{
		Name: "float",
		Parse: func(text string) (any, error) {
			return strconv.ParseFloat(text, 64)
		},
	}

	Bool = Converter{
		Name: "bool",
		Parse: func(text string) (any, error) {
			return strconv.ParseBool(text)
		},
	}

	Duration = Converter{
		Name: "duration",
		Parse: func(text string) (any, error) {
			return time.ParseDuration(text)
		},
	}
)
