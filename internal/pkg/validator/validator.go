package validator

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Money limits mirror a decimal(10,2) column.
const (
	moneyMaxDigits = 10
	moneyPlaces    = 2
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	validate.RegisterCustomTypeFunc(amountValue, Amount{})

	if err := validate.RegisterValidation("money", isMoney); err != nil {
		panic(err)
	}
}

// Amount is a decimal input that may arrive as a JSON string or number.
// Set and Null record whether the key was present and whether it was null.
type Amount struct {
	Raw  string
	Set  bool
	Null bool
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	a.Set = true
	s := strings.TrimSpace(string(b))
	switch {
	case s == "null":
		a.Null = true
	case strings.HasPrefix(s, `"`):
		if err := json.Unmarshal(b, &a.Raw); err != nil {
			a.Raw = s
		}
	default:
		// numbers and anything else are kept verbatim for the money rule
		a.Raw = s
	}
	return nil
}

// Blank reports whether a present value carries nothing to parse.
func (a Amount) Blank() bool {
	return a.Null || strings.TrimSpace(a.Raw) == ""
}

func amountValue(v reflect.Value) interface{} {
	a, ok := v.Interface().(Amount)
	if !ok || !a.Set || a.Blank() {
		return nil
	}
	return a.Raw
}

// FieldErrors maps a JSON field name to human readable messages.
type FieldErrors map[string][]string

// Add appends msg to field.
func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Merge copies every message of other into f.
func (f FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		f[field] = append(f[field], msgs...)
	}
}

// Has reports whether field already carries a message.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Fields returns the sorted field names, used for stable log output.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Validate struct fields. Optional *string fields holding only whitespace
// count as absent, so omitempty skips their format rules.
func Validate(v interface{}) FieldErrors {
	err := validate.Struct(withoutBlankOptionals(v))
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{"non_field_errors": {err.Error()}}
	}

	errs := make(FieldErrors)
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// withoutBlankOptionals returns a copy of the struct behind v with blank
// *string fields set to nil. Anything that is not a struct is returned as is.
func withoutBlankOptionals(v interface{}) interface{} {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return v
	}

	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	for i := 0; i < cp.NumField(); i++ {
		f := cp.Field(i)
		if !f.CanSet() || f.Kind() != reflect.Ptr || f.Type().Elem().Kind() != reflect.String || f.IsNil() {
			continue
		}
		if strings.TrimSpace(f.Elem().String()) == "" {
			f.Set(reflect.Zero(f.Type()))
		}
	}
	return cp.Addr().Interface()
}

// ParseMoney parses a decimal with at most two fractional digits that fits
// into decimal(10,2). Negative amounts are rejected.
func ParseMoney(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("A valid number is required.")
	}
	if d.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("Ensure this value is greater than or equal to 0.")
	}
	if -d.Exponent() > moneyPlaces && !d.Equal(d.Truncate(moneyPlaces)) {
		return decimal.Decimal{}, fmt.Errorf("Ensure that there are no more than %d decimal places.", moneyPlaces)
	}
	if d.Truncate(0).String() != "0" && len(d.Truncate(0).String()) > moneyMaxDigits-moneyPlaces {
		return decimal.Decimal{}, fmt.Errorf("Ensure that there are no more than %d digits before the decimal point.", moneyMaxDigits-moneyPlaces)
	}
	return d.Round(moneyPlaces), nil
}

func isMoney(fl validator.FieldLevel) bool {
	_, err := ParseMoney(fl.Field().String())
	return err == nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "url", "http_url":
		return "Enter a valid URL."
	case "datetime":
		return "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	case "money":
		if _, err := ParseMoney(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
		return "A valid number is required."
	case "gt", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
	}
}
