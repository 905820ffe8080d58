package conf

// Package conf loads the configuration of the fink science archiving job.
//
// # Usage
//
// Loading is explicit; there is no ambient global state. Callers build
// a ConfigSource with the file path and an environment snapshot:
//
//	cs := &conf.ConfigSource{
//	    Path: "/etc/fink/fink.conf",
//	    Env:  conf.EnvironMap(os.Environ()),
//	}
//	config, err := cs.Read()
//
// The environment is passed in rather than read from the process so
// tests can inject arbitrary values for ${VAR} placeholders.
//
// # File Format
//
// The file is a flat sequence of KEY=VALUE lines. Lines starting with
// # and blank lines are skipped. Values may be wrapped in one pair of
// single or double quotes; both mean the same literal string. Values
// may reference environment variables with the ${VAR} syntax, resolved
// at load time from the injected environment.
//
// Only the keys the archiving job consumes are read; the production
// file carries many more, owned by other fink services.
//
// # Strictness
//
// Loading either returns a fully populated Config or fails. There is
// no merging, no defaulting and no last-wins: a recognized key that is
// absent, repeated, empty, of the wrong case or referencing an unset
// variable aborts the load with an error wrapping one of the package
// sentinels (ErrMissingKey, ErrDuplicateKey, ErrEmptyValue,
// ErrInvalidEnumValue, ErrInvalidBooleanLiteral, ErrUnresolvedVariable).
// Configuration errors are operator errors; the job must not start on
// a guessed configuration.
//
// # Internal Architecture
//
// The implementation separates scanning from validation:
//
//   - configDTO: internal struct with pointer fields filled by the
//     line scanner. Pointers allow distinguishing "not set" (nil) from
//     "set to zero value", and a non-nil slot flags a duplicate.
//
//   - Config: public struct with value fields, built from a complete
//     DTO by newConfig, which owns all type validation.
//
//   - ConfigSource: orchestrates reading the file and injecting the
//     environment. Parse is exposed separately for in-memory sources.
