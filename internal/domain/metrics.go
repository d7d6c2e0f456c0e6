package domain

// PaymentsMetrics is the cumulative payments summary exposed at
// GET /v1/metrics/payments.
type PaymentsMetrics struct {
	TotalAttempts    int64   `json:"totalAttempts"`
	DirectCharges    int64   `json:"directCharges"`
	SeparateCharges  int64   `json:"separateCharges"`
	ErrorRate        float64 `json:"errorRate"`
	VolumeEur        int64   `json:"volumeEur"`
	CatalogCacheRate float64 `json:"catalogCacheRate"`
	Period           string  `json:"period"`
}
