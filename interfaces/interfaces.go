// Package interfaces defines core abstractions for the drug info service
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/giygas/druginfo/entities"
)

// Backend defines the contract for the remote inference service.
// Implementations map every failure to an error whose user-facing text
// can be recovered with backend.UserMessage.
type Backend interface {
	// LookupDrug asks for information about a drug by name
	LookupDrug(ctx context.Context, drugName string) (*entities.DrugInfoResult, error)

	// IdentifyMedicine uploads a medicine photo for identification
	IdentifyMedicine(ctx context.Context, filename string, image io.Reader) (*entities.DrugInfoResult, error)

	// Ping checks that the backend answers HTTP at all
	Ping(ctx context.Context) error
}

// ResultStore defines the contract for caching backend results.
// It provides thread-safe access with lock-free reads.
type ResultStore interface {
	// Lookup returns a cached result for the drug name, if still fresh
	Lookup(drugName string) (*entities.DrugInfoResult, bool)

	// Store saves a result under the drug name
	Store(drugName string, result *entities.DrugInfoResult)

	// Prune removes expired entries and returns how many were removed
	Prune(now time.Time) int

	Len() int
	BeginPrune() bool
	EndPrune()
}

// Prober defines the contract for tracking backend reachability.
type Prober interface {
	// Probe pings the backend once and records the outcome
	Probe(ctx context.Context) error

	// LastProbe returns when the backend was last probed, whether it
	// answered and the error when it did not. A zero time means never.
	LastProbe() (at time.Time, ok bool, err error)
}

// Scheduler defines the contract for job scheduling.
// It manages cache pruning and backend probing.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
// It provides a consistent interface for all API endpoints.
type HTTPHandler interface {
	// FormatResponse formats a raw backend payload supplied by the caller
	FormatResponse(w http.ResponseWriter, r *http.Request)

	// DrugInfo looks up a drug by name through the cache and backend
	DrugInfo(w http.ResponseWriter, r *http.Request)

	// MedicineInfo identifies a medicine from an uploaded photo
	MedicineInfo(w http.ResponseWriter, r *http.Request)

	// This will stay in all versions
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
// It provides system health monitoring and reporting.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// QueryValidator defines the contract for validating user input before it
// reaches the backend.
type QueryValidator interface {
	// ValidateQuery checks a query and returns the message to show when it is unusable
	ValidateQuery(q entities.Query) error

	// ValidateInput validates a drug name
	ValidateInput(input string) error

	// ValidateImage validates a medicine photo
	ValidateImage(img *entities.ImageUpload) error
}
