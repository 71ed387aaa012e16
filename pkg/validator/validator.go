package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Errors maps a field name to its validation messages
type Errors map[string][]string

// Add appends a message for field
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Error implements error with a stable, sorted rendering
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return strings.Join(parts, "; ")
}

// ValidateStruct validates a struct based on validate tags and returns
// Errors keyed by the json name of each failing field, or nil.
//
// Supported rules: required, min=N, max=N (string length in runes),
// oneof=a|b|c.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	errs := Errors{}
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonName(field)
		value := v.Field(i)
		for _, rule := range strings.Split(tag, ",") {
			if msg := validateField(value, rule); msg != "" {
				errs.Add(name, msg)
				break
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func jsonName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

// validateField returns a message when value violates rule
func validateField(value reflect.Value, rule string) string {
	if value.Kind() == reflect.Ptr {
		if value.IsNil() {
			if rule == "required" {
				return "This field is required."
			}
			return ""
		}
		value = value.Elem()
	}

	switch {
	case rule == "required":
		if isZero(value) {
			return "This field is required."
		}
	case strings.HasPrefix(rule, "min="):
		n, _ := strconv.Atoi(strings.TrimPrefix(rule, "min="))
		if value.Kind() == reflect.String && utf8.RuneCountInString(value.String()) < n {
			return fmt.Sprintf("Ensure this field has at least %d characters.", n)
		}
	case strings.HasPrefix(rule, "max="):
		n, _ := strconv.Atoi(strings.TrimPrefix(rule, "max="))
		if value.Kind() == reflect.String && utf8.RuneCountInString(value.String()) > n {
			return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
		}
	case strings.HasPrefix(rule, "oneof="):
		if value.Kind() == reflect.String && value.String() != "" {
			choices := strings.Split(strings.TrimPrefix(rule, "oneof="), "|")
			for _, c := range choices {
				if value.String() == c {
					return ""
				}
			}
			return fmt.Sprintf("%q is not a valid choice.", value.String())
		}
	}
	return ""
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// Password policy messages
const (
	PasswordLowercase = "Password must contain at least one lowercase letter."
	PasswordUppercase = "Password must contain at least one uppercase letter."
	PasswordDigit     = "Password must contain at least one digit."
	PasswordSpecial   = "Password must contain at least one special character @$!%*?&."
	PasswordSpace     = "Password must not contain spaces"
	PasswordLength    = "Password must be between 8 and 12 characters."
)

var (
	lowercaseRegex = regexp.MustCompile(`[a-z]`)
	uppercaseRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex     = regexp.MustCompile(`\d`)
	specialRegex   = regexp.MustCompile(`[@$!%*?&]`)
	spaceRegex     = regexp.MustCompile(`\s`)
)

// ValidatePassword checks the password format policy and returns the first violation
func ValidatePassword(password string) error {
	switch {
	case !lowercaseRegex.MatchString(password):
		return errors.New(PasswordLowercase)
	case !uppercaseRegex.MatchString(password):
		return errors.New(PasswordUppercase)
	case !digitRegex.MatchString(password):
		return errors.New(PasswordDigit)
	case !specialRegex.MatchString(password):
		return errors.New(PasswordSpecial)
	case spaceRegex.MatchString(password):
		return errors.New(PasswordSpace)
	}

	if n := utf8.RuneCountInString(password); n < 8 || n > 12 {
		return errors.New(PasswordLength)
	}
	return nil
}

// SanitizeString removes null bytes and surrounding whitespace
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	return strings.TrimSpace(s)
}
