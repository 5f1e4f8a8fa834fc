// Package ingestion turns external sources (web pages, Google Docs, feeds)
// into normalized source documents.
package ingestion

import "fmt"

// InvalidSourceError reports a source locator that cannot be parsed.
type InvalidSourceError struct {
	Source  string
	Message string
	Cause   error
}

func (e *InvalidSourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid source %q: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid source %q: %s", e.Source, e.Message)
}

func (e *InvalidSourceError) Unwrap() error {
	return e.Cause
}

// CredentialsError reports a failure to load, refresh or obtain Google credentials.
type CredentialsError struct {
	Message string
	Cause   error
}

func (e *CredentialsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("credentials error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("credentials error: %s", e.Message)
}

func (e *CredentialsError) Unwrap() error {
	return e.Cause
}
