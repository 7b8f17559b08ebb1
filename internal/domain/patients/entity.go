package patients

// Profile is the authenticated patient's identity as the backend reports it.
type Profile struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
}

// Identity is the outcome of a successful credential exchange.
type Identity struct {
	Token   string
	Profile Profile
}
