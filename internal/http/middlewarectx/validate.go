package middlewarectx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/staffdesk/internal/http/pipeline"
	"github.com/magabrotheeeer/staffdesk/internal/lib/httperr"
	"github.com/magabrotheeeer/staffdesk/internal/lib/validation"
)

// Validate собирает запрос типа T из JSON-тела, параметров пути (тег param)
// и строки запроса (тег query), обрезает пробелы в строковых полях и проверяет
// все поля разом. Все нарушения, включая поля тела неверного JSON-типа,
// объединяются в одно сообщение 422. Синтаксически битое тело даёт 400.
// Результат доступен обработчику через Payload[T].
func Validate[T any](v *validator.Validate) pipeline.Step {
	return func(_ http.ResponseWriter, r *http.Request) (*http.Request, error) {
		const op = "middlewarectx.Validate"

		var (
			payload  T
			typeErrs []validation.TypeError
		)
		if r.Body != nil && r.Body != http.NoBody {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w: %w", op, httperr.BadRequest("Invalid request body"), err)
			}
			if typeErrs, err = decodeBody(body, &payload); err != nil {
				return nil, fmt.Errorf("%s: %w: %w", op, httperr.BadRequest("Invalid request body"), err)
			}
		}

		bindStrings(&payload, "param", func(key string) string { return chi.URLParam(r, key) })
		query := r.URL.Query()
		bindStrings(&payload, "query", query.Get)
		trimStrings(&payload)

		err := v.Struct(payload)
		var verrs validator.ValidationErrors
		if err != nil && !errors.As(err, &verrs) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if len(verrs) > 0 || len(typeErrs) > 0 {
			return nil, httperr.Unprocessable(validation.Join(reflect.TypeOf(payload), typeErrs, err))
		}

		return r.WithContext(WithPayload(r.Context(), payload)), nil
	}
}

// decodeBody разбирает JSON-тело в dst. Поля неверного типа остаются нулевыми
// и возвращаются списком; ошибкой считается только тело, которое не удалось
// разобрать как JSON-объект.
func decodeBody(body []byte, dst any) ([]validation.TypeError, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	err := render.DecodeJSON(bytes.NewReader(body), dst)
	var typeErr *json.UnmarshalTypeError
	if err == nil || !errors.As(err, &typeErr) {
		return nil, err
	}

	// Декодер сообщает только первое несовпадение типа, поэтому поля
	// перепроверяются по одному.
	var raw map[string]json.RawMessage
	if jerr := json.Unmarshal(body, &raw); jerr != nil {
		return nil, err
	}
	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() != reflect.Struct {
		return nil, err
	}
	rt := rv.Type()
	var out []validation.TypeError
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if !sf.IsExported() || name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		val, ok := lookupKey(raw, name)
		if !ok {
			continue
		}
		if json.Unmarshal(val, reflect.New(sf.Type).Interface()) != nil {
			rv.Field(i).Set(reflect.Zero(sf.Type))
			out = append(out, validation.TypeError{Field: sf.Name, Label: validation.Label(sf), Kind: sf.Type.Kind()})
		}
	}
	if len(out) == 0 {
		return nil, err
	}
	return out, nil
}

// lookupKey ищет ключ так же, как encoding/json: сначала точно, затем без учёта регистра.
func lookupKey(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if v, ok := raw[name]; ok {
		return v, true
	}
	for k, v := range raw {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// bindStrings заполняет строковые поля с тегом tag значениями из lookup.
func bindStrings(dst any, tag string, lookup func(string) string) {
	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		key := rt.Field(i).Tag.Get(tag)
		if key == "" {
			continue
		}
		f := rv.Field(i)
		if f.Kind() != reflect.String || !f.CanSet() {
			continue
		}
		if val := lookup(key); val != "" {
			f.SetString(val)
		}
	}
}

func trimStrings(dst any) {
	rv := reflect.ValueOf(dst).Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
