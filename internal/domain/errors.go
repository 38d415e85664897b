package domain

import "errors"

var (
	// ErrExtractionFailed is returned when a source product cannot be
	// extracted from its URL. It aborts the whole match.
	ErrExtractionFailed = errors.New("could not extract product information from source URL")

	// ErrAdapterFailure is returned when a single platform's search or
	// price call fails. It is absorbed by the orchestrator, never escalated.
	ErrAdapterFailure = errors.New("platform adapter request failed")

	// ErrUnsupportedPlatform is returned when a URL or platform id does not
	// map to any registered adapter.
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrProductNotFound is returned when a product id is unknown.
	ErrProductNotFound = errors.New("product not found")

	// ErrTaskNotFound is returned when a task id is unknown.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskTerminal is returned when mutating a task that has already
	// completed or failed.
	ErrTaskTerminal = errors.New("task already in terminal state")

	// ErrNotAuthorized is returned when the requesting user does not own
	// the resource.
	ErrNotAuthorized = errors.New("not authorized to access this resource")

	// ErrInvalidRequest is returned when request parameters are malformed.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache.
	ErrCacheMiss = errors.New("cache miss")

	// ErrMLAPIFailure is returned when a model endpoint request fails.
	ErrMLAPIFailure = errors.New("model endpoint request failed")
)
