package entities

// PublicUser is the user shape returned by register and login; the stored
// password hash never leaves the server.
type PublicUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
}
