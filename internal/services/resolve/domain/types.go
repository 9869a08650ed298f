// Package domain holds the core types and ports for batch name resolution
package domain

import (
	"time"

	"enscheck/internal/core/namehash"
)

// Defaults forming the registry contract surface
const (
	DefaultBatchSize = 100
	DefaultDelay     = 1000 * time.Millisecond

	// MaxBatchSize is the subgraph's page limit; a larger batch would lose records past it
	MaxBatchSize = 1000
)

// Scheme selects which identifier is submitted to the registry for a name
type Scheme string

const (
	// SchemeLabelHash submits keccak(name); the ENS registrations entity is keyed by it
	SchemeLabelHash Scheme = "labelhash"

	// SchemeNameHash submits namehash(name + "." + tld); the ENS domains entity is keyed by it
	SchemeNameHash Scheme = "namehash"
)

// Identify computes the identifier for a normalized name under the scheme.
// tld is only used by SchemeNameHash
func (s Scheme) Identify(name, tld string) namehash.ID {
	if s == SchemeNameHash {
		if tld != "" {
			name = name + "." + tld
		}
		return namehash.NameHash(name)
	}
	return namehash.LabelHash(name)
}

// Valid reports whether s is a known scheme
func (s Scheme) Valid() bool { return s == SchemeLabelHash || s == SchemeNameHash }

// Record is one registry entry returned for a submitted identifier.
// Timestamps are decimal UNIX seconds exactly as the registry sent them
type Record struct {
	ID           namehash.ID
	Name         string
	RegisteredAt string
	ExpiresAt    string
}

// ExpiredEntry is a registered name whose expiry is in the past
type ExpiredEntry struct {
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Stats are running totals for a run
type Stats struct {
	Read         int `json:"read"`          // raw lines consumed
	Skipped      int `json:"skipped"`       // blank, unreadable or rejected by normalization
	Processed    int `json:"processed"`     // names in successfully reconciled batches
	Dropped      int `json:"dropped"`       // names in failed batches
	Batches      int `json:"batches"`       // registry submissions
	BatchFails   int `json:"batch_fails"`   // failed submissions
	RecordFails  int `json:"record_fails"`  // records rejected during reconciliation
	Unregistered int `json:"unregistered"`  // len(Result.Unregistered)
	Expired      int `json:"expired"`       // len(Result.Expired)
	Collisions   int `json:"collisions"`    // identifiers overwritten inside a pending batch
}

// Result is the classification of a whole run
type Result struct {
	Unregistered []string       `json:"unregistered"`
	Expired      []ExpiredEntry `json:"expired"`
	Stats        Stats          `json:"stats"`
}

// BatchFailure describes a registry submission that failed and was dropped
type BatchFailure struct {
	Seq   int           // 1-based submission number
	Names []string      // names in submission order
	IDs   []namehash.ID // identifiers in the same order as Names
	Err   error
	At    time.Time
}

// RecordFailure describes a registry record that could not be reconciled
type RecordFailure struct {
	Seq    int // submission the record arrived in
	Name   string
	Record Record
	Err    error
	At     time.Time
}

// Progress is reported after every successfully reconciled batch
type Progress struct {
	Seq      int
	Size     int
	Elapsed  time.Duration
	Stats    Stats
	Finished bool
}

// RunInfo identifies a run for output collaborators
type RunInfo struct {
	ID          string
	Source      string
	Registry    string
	Scheme      Scheme
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool   // stopped by cancellation; the result is partial
	Aborted     string // error that stopped the run early; the result is partial
}

// Partial reports whether the run stopped before reading all of its input
func (r RunInfo) Partial() bool { return r.Interrupted || r.Aborted != "" }

// Status values for classified names
const (
	StatusUnregistered = "unregistered"
	StatusExpired      = "expired"
	StatusActive       = "active"
	StatusDropped      = "dropped"
	StatusSkipped      = "skipped"
)

// Failure kinds
const (
	FailureBatch  = "batch"
	FailureRecord = "record"
)

// StoredFailure is the flat form of a BatchFailure or RecordFailure kept by sinks
type StoredFailure struct {
	Kind   string    `json:"kind"`
	Batch  int       `json:"batch"`
	Names  []string  `json:"names,omitempty"`  // batch failures only
	Name   string    `json:"name,omitempty"`   // record failures only
	Expiry string    `json:"expiry,omitempty"` // record failures only, verbatim
	Code   string    `json:"code"`
	Error  string    `json:"error"`
	At     time.Time `json:"at"`
}

// FlattenBatch converts a batch failure; code is the error's perr code name
func FlattenBatch(f BatchFailure, code string) StoredFailure {
	return StoredFailure{Kind: FailureBatch, Batch: f.Seq, Names: f.Names, Code: code, Error: errText(f.Err), At: f.At.UTC()}
}

// FlattenRecord converts a record failure; code is the error's perr code name
func FlattenRecord(f RecordFailure, code string) StoredFailure {
	return StoredFailure{
		Kind: FailureRecord, Batch: f.Seq, Name: f.Name, Expiry: f.Record.ExpiresAt,
		Code: code, Error: errText(f.Err), At: f.At.UTC(),
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
