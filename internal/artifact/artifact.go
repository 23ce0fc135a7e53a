// Package artifact treats a directory as an append-only, timestamp-versioned
// object store. Each pipeline stage reads the artifacts of earlier stages and
// writes exactly one new artifact of its own category; nothing is ever
// rewritten in place.
package artifact

// Category identifies one artifact kind: a subdirectory plus filename prefix.
type Category struct {
	// Dir is the subdirectory under the artifact root.
	Dir string

	// Prefix is the filename prefix for files of this category.
	Prefix string
}

// The pipeline's artifact categories.
var (
	CategoryTrace          = Category{Dir: "policy-trace", Prefix: "trace"}
	CategoryReview         = Category{Dir: "policy-review", Prefix: "review"}
	CategoryRecommendation = Category{Dir: "policy-inference", Prefix: "inference"}
	CategoryDrift          = Category{Dir: "policy-drift", Prefix: "drift"}
	CategoryFutures        = Category{Dir: "policy-futures", Prefix: "future"}
	CategoryFederated      = Category{Dir: "federated-policy", Prefix: "federated"}
	CategoryCounterfactual = Category{Dir: "policy-counterfactual", Prefix: "cf"}
	CategoryAutopilot      = Category{Dir: "policy-autopilot", Prefix: "cycle"}
	CategoryRunbook        = Category{Dir: "policy-runbook", Prefix: "runbook"}
)

// Store is the repository interface over the artifact directory. The
// analytical engines only ever see decoded values, so they can be tested
// against MemStore instead of real disk.
type Store interface {
	// Write persists payload as a new timestamped artifact of the category
	// and returns the path (or key) it was written under.
	Write(cat Category, payload any) (string, error)

	// List decodes every artifact of the category into out, oldest first.
	// out must be a pointer to a slice; malformed files are skipped with a
	// warning rather than failing the whole read.
	List(cat Category, out any) error

	// FindLatest decodes the newest artifact of the category into out.
	// Returns ErrNotFound when the category is empty.
	FindLatest(cat Category, out any) error
}
