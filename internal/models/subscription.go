package models

// SubscriptionTier is one recurring PayPal plan offered on the pricing section.
type SubscriptionTier struct {
	Key      string
	Name     string
	Price    string
	Summary  string
	Features []string
	PlanID   string
}

// Configured reports whether a PayPal plan id has been injected for the tier.
func (t SubscriptionTier) Configured() bool {
	return t.PlanID != ""
}
