package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	reID    = regexp.MustCompile(`^[0-9]{1,9}$`)
	reSize  = regexp.MustCompile(`^[A-Za-z0-9 ./-]{0,16}$`)
	reCat   = regexp.MustCompile(`^[A-Za-z0-9 &_-]{1,40}$`)
	reMoney = regexp.MustCompile(`^[0-9]{1,7}(\.[0-9]{1,2})?$`)
)

// ProductID parses a positive integer product id.
func ProductID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	return n, err == nil && n > 0
}

// OrderID accepts the uuid form order ids are issued in.
func OrderID(s string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// Page parses a 1-based page number.
func Page(s string) (int, bool) { return ProductID(s) }

// Qty parses a requested add quantity, capped at 50. Blank means 1; zero,
// negative and non-numeric values are rejected.
func Qty(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return min(n, 50), true
}

// SetQty parses an absolute quantity; 0 and negatives are allowed and mean remove.
func SetQty(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return min(n, 50), true
}

// Delta parses a quantity step in -50..50, excluding 0.
func Delta(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 || n < -50 || n > 50 {
		return 0, false
	}
	return n, true
}

// Size trims a size label; blank is valid and means "no variant".
func Size(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reSize.MatchString(s)
}

func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reCat.MatchString(s)
}

// Money validates a non-negative amount with at most two decimals.
func Money(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reMoney.MatchString(s)
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// FieldErrors maps a json field path to a readable message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string { return fmt.Sprintf("validation failed: %d field(s)", len(f)) }

// Struct validates v's `validate` tags. Failures come back as FieldErrors.
func Struct(v any) error {
	err := structValidator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		out[fieldPath(fe.Namespace())] = message(fe)
	}
	return out
}

// fieldPath drops the root struct name: "CheckoutDetails.shippingAddress.zip" -> "shippingAddress.zip".
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}
