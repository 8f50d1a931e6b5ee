package entities

// DriftReport is the outcome of one counter drift sweep. The sweep only
// observes; nothing repairs the counters.
type DriftReport struct {
	TotalSlots        int  `json:"total_slots"`
	ReportedAvailable int  `json:"reported_available"`
	ReportedFull      int  `json:"reported_full"`
	DerivedAvailable  int  `json:"derived_available"`
	UnavailableSlots  int  `json:"unavailable_slots"`
	CounterMismatch   bool `json:"counter_mismatch"`
	AvailableDiverged bool `json:"available_diverged"`
}
