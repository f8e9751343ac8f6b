package platform

import "context"

// Source is the port one platform adapter implements per record kind.
// Implementations know how to authenticate, paginate and rate-limit
// exactly one external API and return raw platform-native payloads.
type Source interface {
	// Platform returns the platform this source fetches from
	Platform() Code

	// Kind returns the record kind this source produces
	Kind() RecordKind

	// MaxPageSize returns the platform-declared maximum batch size
	MaxPageSize() int

	// FetchPage fetches one page of raw records inside the window.
	// pageToken is "" for the first page; the returned page carries the
	// token for the next one. Transient failures (rate limit, timeout)
	// are retried a bounded number of times inside the adapter before
	// being surfaced.
	FetchPage(ctx context.Context, cred *Credential, window TimeWindow, pageToken string, pageSize int) (*Page, error)
}

// Normalizer maps one platform's raw payloads into a canonical record.
// Pure, no I/O. A malformed-but-parseable payload yields (nil, nil) and
// is counted as skipped by the caller; Normalize never panics on
// missing optional fields, it substitutes documented defaults instead.
type Normalizer interface {
	// Kind returns the record kind this normalizer produces
	Kind() RecordKind

	// Normalize converts a raw payload; (nil, nil) means dropped
	Normalize(raw RawRecord) (CanonicalRecord, error)
}
