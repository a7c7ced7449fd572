// Package util provides error conventions and validation helpers shared by
// the portal packages.
//
// # Error Conventions
//
//   - Sentinel errors (errors.New) for stable conditions that callers check
//     with errors.Is. Example: ErrNotFound.
//   - Structured error types for errors that carry fields (ConfigError,
//     ValidationError, PermissionError). Each implements Error, Unwrap when
//     it wraps, and Is.
//   - fmt.Errorf with %w for ad-hoc context on an existing error.
//
// # Validation
//
//	err := util.ValidateURL("https://stats.example.org/api/")
//	id, err := util.ParseID(c.Param("id"))
package util
