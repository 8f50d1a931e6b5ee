package entities

// ReservationConfirmation is returned to the caller after a successful
// reservation.
type ReservationConfirmation struct {
	BookingID string `json:"booking_id"`
	Slot      string `json:"slot"`
	Message   string `json:"message"`
}

// BookingEntry is one row of the booking audit listing.
type BookingEntry struct {
	Key     string `json:"key"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Slot    string `json:"slot"`
	SlotKey string `json:"slot_key"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}
