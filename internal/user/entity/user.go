package entity

// User is an account record in the users collection. The password hash
// is stored alongside the account and must never appear in API
// responses; handlers project users into response types instead.
type User struct {
	Username       string `json:"username"`
	HashedPassword string `json:"hashed_password"`
	Disabled       bool   `json:"disabled"`
	IsAdmin        bool   `json:"is_admin"`
}
