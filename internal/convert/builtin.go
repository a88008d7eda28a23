package convert

import (
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var stringType = reflect.TypeOf("")

// timeLayouts are tried in order when parsing a time.Time.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func registerBuiltins(s *Service) {
	s.RegisterKind(stringType, reflect.Bool, func(v any, t reflect.Type) (any, error) {
		b, err := strconv.ParseBool(v.(string))
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(b).Convert(t).Interface(), nil
	})

	signed := func(v any, t reflect.Type) (any, error) {
		n, err := strconv.ParseInt(v.(string), 10, t.Bits())
		if err != nil {
			return nil, err
		}
		out := reflect.New(t).Elem()
		out.SetInt(n)
		return out.Interface(), nil
	}
	for _, k := range []reflect.Kind{reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64} {
		s.RegisterKind(stringType, k, signed)
	}

	unsigned := func(v any, t reflect.Type) (any, error) {
		n, err := strconv.ParseUint(v.(string), 10, t.Bits())
		if err != nil {
			return nil, err
		}
		out := reflect.New(t).Elem()
		out.SetUint(n)
		return out.Interface(), nil
	}
	for _, k := range []reflect.Kind{reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64} {
		s.RegisterKind(stringType, k, unsigned)
	}

	float := func(v any, t reflect.Type) (any, error) {
		f, err := strconv.ParseFloat(v.(string), t.Bits())
		if err != nil {
			return nil, err
		}
		out := reflect.New(t).Elem()
		out.SetFloat(f)
		return out.Interface(), nil
	}
	s.RegisterKind(stringType, reflect.Float32, float)
	s.RegisterKind(stringType, reflect.Float64, float)

	// named string types such as enums
	s.RegisterKind(stringType, reflect.String, func(v any, t reflect.Type) (any, error) {
		return reflect.ValueOf(v).Convert(t).Interface(), nil
	})

	RegisterFunc(s, parseTime)
	RegisterFunc(s, time.ParseDuration)
	RegisterFunc(s, decimal.NewFromString)
	RegisterFunc(s, uuid.Parse)
}

func parseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
