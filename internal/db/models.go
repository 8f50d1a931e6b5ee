package db

// Parking lot status values.
const (
	StatusAvailable = "AVAILABLE"
	StatusFull      = "FULL"
)

// BookingStatusActive is the status every new booking record is created with.
// Records are never mutated afterwards.
const BookingStatusActive = "ACTIVE"

// ParkingStats is the aggregate counters record at the "parking" path.
// availableSlots + fullSlots == totalSlots is intended but not enforced
// anywhere; concurrent reservations can make the counters drift.
type ParkingStats struct {
	TotalSlots     int    `json:"totalSlots"`
	AvailableSlots int    `json:"availableSlots"`
	FullSlots      int    `json:"fullSlots"`
	Status         string `json:"status"`
}

// Slot is a per-space record under "slots/<key>". A slot is unavailable
// when occupied or booked. The booked field is optional in stored data;
// absent means false.
type Slot struct {
	SlotID       string  `json:"slotId"`
	Floor        int     `json:"floor"`
	Price        float64 `json:"price"`
	HasEVCharger bool    `json:"hasEVCharger"`
	Occupied     bool    `json:"occupied"`
	Booked       bool    `json:"booked,omitempty"`
	UserID       *string `json:"userId"`
}

// Booking is the immutable audit record appended under "bookings".
type Booking struct {
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Slot    string `json:"slot"`
	SlotKey string `json:"slotKey"`
	Time    string `json:"time"`
	Status  string `json:"status"`
}

// User is one entry of the flat-file registration store. Password holds
// the hash exactly as the client submitted it.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CreatedAt string `json:"createdAt"`
}
