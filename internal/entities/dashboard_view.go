package entities

// Badge labels and styles for slot cards. Occupied and booked share the
// badge style but differ in label; both disable the reserve button.
const (
	BadgeAvailable = "Available"
	BadgeOccupied  = "Occupied"
	BadgeBooked    = "Booked"

	BadgeStyleAvailable = "available"
	BadgeStyleOccupied  = "occupied"

	ButtonReserve = "Reserve"
)

// SlotCard is one rendered card on the dashboard. Title is the slot
// identifier the synchronizer joins against incoming slot records; cards
// without a matching record keep whatever state they last had.
type SlotCard struct {
	Title        string  `json:"title"`
	Floor        int     `json:"floor"`
	Price        float64 `json:"price"`
	HasEVCharger bool    `json:"hasEVCharger"`
	Badge        string  `json:"badge"`
	BadgeStyle   string  `json:"badgeStyle"`
	Button       string  `json:"button"`
	CanReserve   bool    `json:"canReserve"`
}

// DashboardView is the full dashboard state pushed to clients. The
// available count is written from two places: the backend counter field on
// parking updates, and totalSlots minus the unavailable tally on slot
// updates. The two can disagree; both are kept on purpose.
type DashboardView struct {
	AvailableCount   int        `json:"availableCount"`
	OccupiedCount    int        `json:"occupiedCount"`
	OccupancyPercent int        `json:"occupancyPercent"`
	OccupancyBar     int        `json:"occupancyBar"`
	Cards            []SlotCard `json:"cards"`
}
