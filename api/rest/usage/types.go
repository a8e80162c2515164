package usage

type UsageResponse struct {
	Count     int  `json:"count"`     // Calls recorded in the ledger
	Limit     int  `json:"limit"`     // Free tier limit (-1 for subscribers)
	Remaining int  `json:"remaining"` // Remaining free calls (-1 for subscribers)
	IsPro     bool `json:"is_pro"`
}
