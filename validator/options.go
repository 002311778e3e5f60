package validator

import (
	"github.com/go-logr/logr"
	"github.com/srerickson/eark/backend"
	"github.com/srerickson/eark/vocabulary"
)

type options struct {
	logger      logr.Logger
	listeners   []Listener
	vocab       *vocabulary.Vocabularies
	concurrency int
	backend     backend.Backend
}

func defaultOptions() *options {
	return &options{
		logger:      logr.Discard(),
		concurrency: 1,
	}
}

// Option is used to configure a Validator.
type Option func(*options)

// WithLogger sets the logger for debug messages. Logging is disabled by
// default.
func WithLogger(l logr.Logger) Option {
	return func(opts *options) {
		opts.logger = l
	}
}

// WithListeners adds listeners that are notified of validation progress.
func WithListeners(lis ...Listener) Option {
	return func(opts *options) {
		opts.listeners = append(opts.listeners, lis...)
	}
}

// WithVocabularies sets the controlled vocabularies used by rules. The
// built-in vocabularies are used by default.
func WithVocabularies(v *vocabulary.Vocabularies) Option {
	return func(opts *options) {
		opts.vocab = v
	}
}

// WithConcurrency sets the number of representation manifests validated
// concurrently. The default is 1.
func WithConcurrency(n int) Option {
	return func(opts *options) {
		if n < 1 {
			n = 1
		}
		opts.concurrency = n
	}
}

// WithBackend sets the backend for the package, instead of opening the
// validator's path. The backend is not closed by the Validator.
func WithBackend(b backend.Backend) Option {
	return func(opts *options) {
		opts.backend = b
	}
}
