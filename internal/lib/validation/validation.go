// Package validation настраивает go-playground/validator под правила API
// и собирает сообщения об ошибках в одну строку.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator"
)

var phoneRegex = regexp.MustCompile(`^\+998\d{9}$`)

// New возвращает валидатор с зарегистрированными правилами phone, between и intrange.
// Имя поля в сообщениях берётся из тега label, затем из json.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(Label)
	mustRegister(v, "phone", isPhone)
	mustRegister(v, "between", lengthBetween)
	mustRegister(v, "intrange", intInRange)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

// Label возвращает имя поля для сообщений: тег label, затем json, query или param.
func Label(f reflect.StructField) string {
	if label := f.Tag.Get("label"); label != "" {
		return label
	}
	for _, key := range []string{"json", "query", "param"} {
		name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

func isPhone(fl validator.FieldLevel) bool {
	return phoneRegex.MatchString(fl.Field().String())
}

// lengthBetween проверяет длину строки в символах: between=4:16.
func lengthBetween(fl validator.FieldLevel) bool {
	lo, hi, ok := bounds(fl.Param())
	if !ok || fl.Field().Kind() != reflect.String {
		return false
	}
	n := utf8.RuneCountInString(fl.Field().String())
	return n >= lo && (hi < 0 || n <= hi)
}

// intInRange проверяет, что строка содержит целое число в диапазоне: intrange=1:100, intrange=1:.
func intInRange(fl validator.FieldLevel) bool {
	lo, hi, ok := bounds(fl.Param())
	if !ok || fl.Field().Kind() != reflect.String {
		return false
	}
	n, err := strconv.Atoi(fl.Field().String())
	if err != nil {
		return false
	}
	return n >= lo && (hi < 0 || n <= hi)
}

// bounds разбирает параметр вида "lo:hi". Пустая верхняя граница означает её отсутствие.
func bounds(param string) (lo, hi int, ok bool) {
	parts := strings.SplitN(param, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	if parts[1] == "" {
		return lo, -1, true
	}
	hi, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// Message объединяет все нарушения через пробел в порядке объявления полей.
// Для ошибок, не относящихся к валидации, возвращает их текст.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return strings.TrimSpace(strings.Join(msgs, " "))
}

// TypeError — значение поля тела пришло не того JSON-типа.
type TypeError struct {
	Field string // Имя поля в Go-структуре
	Label string
	Kind  reflect.Kind
}

// Message формирует текст нарушения, например "Username must be a string.".
func (e TypeError) Message() string {
	switch e.Kind {
	case reflect.String:
		return fmt.Sprintf("%s must be a string.", e.Label)
	case reflect.Bool:
		return fmt.Sprintf("%s must be a boolean.", e.Label)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%s must be an integer.", e.Label)
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%s must be a number.", e.Label)
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("%s must be an array.", e.Label)
	case reflect.Map, reflect.Struct:
		return fmt.Sprintf("%s must be an object.", e.Label)
	default:
		return fmt.Sprintf("%s is invalid.", e.Label)
	}
}

// Join объединяет ошибки типов и ошибки валидатора в одно сообщение
// в порядке полей структуры t. Для поля с ошибкой типа остальные его
// правила не сообщаются.
func Join(t reflect.Type, typeErrs []TypeError, err error) string {
	var verrs validator.ValidationErrors
	errors.As(err, &verrs)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return Message(err)
	}

	byType := make(map[string]TypeError, len(typeErrs))
	for _, te := range typeErrs {
		byType[te.Field] = te
	}

	msgs := make([]string, 0, len(typeErrs)+len(verrs))
	used := make([]bool, len(verrs))
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		if te, ok := byType[name]; ok {
			msgs = append(msgs, te.Message())
		}
		for j, fe := range verrs {
			if used[j] || fe.StructField() != name {
				continue
			}
			used[j] = true
			if _, ok := byType[name]; !ok {
				msgs = append(msgs, describe(fe))
			}
		}
	}
	for j, fe := range verrs {
		if !used[j] {
			msgs = append(msgs, describe(fe))
		}
	}
	return strings.TrimSpace(strings.Join(msgs, " "))
}

func describe(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "between":
		lo, hi, _ := bounds(fe.Param())
		if hi < 0 {
			return fmt.Sprintf("%s must be at least %d characters long.", label, lo)
		}
		return fmt.Sprintf("%s must be between %d and %d characters long.", label, lo, hi)
	case "phone":
		return fmt.Sprintf("%s must match +998XXXXXXXXX format.", label)
	case "oneof":
		return fmt.Sprintf("Invalid %s value.", strings.ToLower(label))
	case "uuid":
		return fmt.Sprintf("%s must be a valid UUID.", label)
	case "intrange":
		lo, hi, _ := bounds(fe.Param())
		if hi < 0 {
			return fmt.Sprintf("%s must be an integer greater than or equal to %d.", label, lo)
		}
		return fmt.Sprintf("%s must be an integer between %d and %d.", label, lo, hi)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
