package metrics

import (
	"time"
)

// RecordContactCall records the result of one contact call.
// Outcome is the lowercase call outcome label (e.g., "succeeded", "skipped").
// Duration covers the whole call pipeline including retries and backoff.
func RecordContactCall(outcome string, duration time.Duration, retries int) {
	CallsTotal.WithLabelValues(outcome).Inc()
	CallDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	CallRetries.Observe(float64(retries))
}

// RecordCampaign records metrics for a completed campaign run.
// Status should be "completed" or "interrupted".
func RecordCampaign(status string, duration time.Duration) {
	CampaignsTotal.WithLabelValues(status).Inc()
	CampaignDuration.Observe(duration.Seconds())
}

// UpdateContactsQueued updates the size of the current campaign queue.
// Set this when a campaign starts; the gauge drops to zero once every
// contact has been processed.
func UpdateContactsQueued(count int) {
	ContactsQueued.Set(float64(count))
}
