package core

import "strings"

// ServiceResult is the envelope every service operation returns. Expected
// failures travel in Error; Go errors are reserved for programmer mistakes
// and conditions the caller cannot act on.
type ServiceResult[T any] struct {
	Success bool
	Data    T
	Error   string
}

func OK[T any](data T) ServiceResult[T] {
	return ServiceResult[T]{Success: true, Data: data}
}

func Failure[T any](message string) ServiceResult[T] {
	return ServiceResult[T]{Error: strings.TrimSpace(message)}
}

func FailureFrom[T any](err error) ServiceResult[T] {
	if err == nil {
		return ServiceResult[T]{Error: "unknown error"}
	}
	return ServiceResult[T]{Error: err.Error()}
}

// MaybeResult is the lookup envelope: found with a value, or not found
// with an optional diagnostic.
type MaybeResult[T any] struct {
	Found bool
	Value T
	Error string
}

func Found[T any](value T) MaybeResult[T] {
	return MaybeResult[T]{Found: true, Value: value}
}

func NotFound[T any]() MaybeResult[T] {
	return MaybeResult[T]{}
}

func NotFoundBecause[T any](err error) MaybeResult[T] {
	if err == nil {
		return MaybeResult[T]{}
	}
	return MaybeResult[T]{Error: err.Error()}
}
