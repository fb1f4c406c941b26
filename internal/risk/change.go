package risk

import "github.com/good-yellow-bee/breachwatch/internal/models"

// maxNotifiedNames caps how many breach names a notification carries.
const maxNotifiedNames = 5

// Change is the result of comparing a fresh check against the stored state.
type Change struct {
	// IsNew reports whether the fresh record count exceeds the stored one.
	IsNew    bool
	NewCount int

	// NewBreachNames holds up to five display names from the fresh fetch,
	// used to compose the notification body.
	//
	// This is a count-based diff: when the provider drops an old breach and
	// adds a new one in the same cycle the count may not grow and the names
	// taken here are not guaranteed to be the actually-new breaches. A
	// set-based diff would need stable breach identities, which the provider
	// does not promise; changing it would also change observable
	// notification content, so the count heuristic is kept as-is.
	NewBreachNames []string
}

// DetectChange compares the previously stored breach count against freshly
// fetched records.
func DetectChange(previousCount int, records []models.BreachRecord) Change {
	change := Change{
		IsNew:    len(records) > previousCount,
		NewCount: len(records),
	}
	if !change.IsNew {
		return change
	}
	for _, rec := range records {
		change.NewBreachNames = append(change.NewBreachNames, rec.Name)
		if len(change.NewBreachNames) == maxNotifiedNames {
			break
		}
	}
	return change
}
