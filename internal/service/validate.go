package service

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Akashgupta-1920/DivyaAnjani/internal/apperror"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/model"
	"github.com/Akashgupta-1920/DivyaAnjani/internal/utils"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\d{10,15}$`)
	idRe    = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// messages maps "Field.tag" to the text reported for that violation.
type messages map[string]string

func (m messages) lookup(fe validator.FieldError) string {
	if s, ok := m[fe.Field()+"."+fe.Tag()]; ok {
		return s
	}
	return fe.Field() + " is invalid"
}

// Validator wraps validator.Validate with the custom rules used by the
// auth and catalog inputs.
type Validator struct{ v *validator.Validate }

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= utils.MaxPasswordBytes
	})
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return model.IsCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		_, ok := parsePrice(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("stock", func(fl validator.FieldLevel) bool {
		_, ok := parseStock(fl.Field().String())
		return ok
	})
	return &Validator{v: v}
}

// Struct validates every field of s.
func (x *Validator) Struct(s any, msgs messages) error {
	return x.collect(x.v.Struct(s), msgs)
}

// Partial validates only the named fields of s.
func (x *Validator) Partial(s any, msgs messages, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return x.collect(x.v.StructPartial(s, fields...), msgs)
}

func (x *Validator) collect(err error, msgs messages) error {
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperror.Server(err)
	}
	out := make([]string, 0, len(ves))
	for _, fe := range ves {
		out = append(out, msgs.lookup(fe))
	}
	return apperror.Validation(out)
}

// ValidID reports whether id has the 24-hex shape of a stored id.
func ValidID(id string) bool { return idRe.MatchString(id) }

func parsePrice(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func parseStock(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
