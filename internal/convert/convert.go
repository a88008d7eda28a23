// Package convert provides a registry of value converters keyed by source and target type.
package convert

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNoConverter is returned when no converter is registered for a source/target pair.
var ErrNoConverter = errors.New("no converter registered")

// Func converts value into a value of the target type.
type Func func(value any, target reflect.Type) (any, error)

type pair struct {
	source reflect.Type
	target reflect.Type
}

type kindPair struct {
	source reflect.Type
	target reflect.Kind
}

// Service converts values between types. Exact (source, target) converters take
// precedence over converters registered for a target kind, which also cover named types.
// A Service is safe for concurrent use.
type Service struct {
	exact sync.Map // pair -> Func
	kinds sync.Map // kindPair -> Func
}

// New creates a service without any converters.
func New() *Service {
	return &Service{}
}

// NewDefault creates a service with the built-in string converters registered.
func NewDefault() *Service {
	s := New()
	registerBuiltins(s)
	return s
}

// Register adds a converter for an exact source and target type.
func (s *Service) Register(source, target reflect.Type, fn Func) {
	s.exact.Store(pair{source, target}, fn)
}

// RegisterKind adds a converter from source to every type of the target kind.
func (s *Service) RegisterKind(source reflect.Type, target reflect.Kind, fn Func) {
	s.kinds.Store(kindPair{source, target}, fn)
}

// RegisterFunc registers a typed converter from S to T.
func RegisterFunc[S, T any](s *Service, fn func(S) (T, error)) {
	source := reflect.TypeOf((*S)(nil)).Elem()
	target := reflect.TypeOf((*T)(nil)).Elem()
	s.Register(source, target, func(value any, _ reflect.Type) (any, error) {
		return fn(value.(S))
	})
}

func (s *Service) lookup(source, target reflect.Type) (Func, bool) {
	if source == nil || target == nil {
		return nil, false
	}
	if fn, ok := s.exact.Load(pair{source, target}); ok {
		return fn.(Func), true
	}
	if fn, ok := s.kinds.Load(kindPair{source, target.Kind()}); ok {
		return fn.(Func), true
	}
	return nil, false
}

// CanConvert reports whether a converter from source to target is registered.
func (s *Service) CanConvert(source, target reflect.Type) bool {
	_, ok := s.lookup(source, target)
	return ok
}

// Convert converts value to target.
func (s *Service) Convert(value any, target reflect.Type) (any, error) {
	if value == nil {
		return nil, nil
	}
	source := reflect.TypeOf(value)
	if source == target {
		return value, nil
	}
	fn, ok := s.lookup(source, target)
	if !ok {
		return nil, fmt.Errorf("%s to %s: %w", source, target, ErrNoConverter)
	}
	out, err := fn(value, target)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %v to %s: %w", value, target, err)
	}
	return out, nil
}

// To converts value to T using s.
func To[T any](s *Service, value any) (T, error) {
	var zero T
	out, err := s.Convert(value, reflect.TypeOf((*T)(nil)).Elem())
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}
