package domain

// User is the read-model surface of the external identity service.
// Only the fields the booking core needs are carried here.
type User struct {
	ID      int32  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Blocked bool   `json:"blocked"`
}
