package library

type Wallet struct {
	PrivateKey string
	SeedWords  string
	Account    Account
}

type Account = string

type Sha256 = string

// Profile is the part of a kind 0 content payload we know how to read and write.
type Profile struct {
	Name    string `json:"name,omitempty"`
	About   string `json:"about,omitempty"`
	Picture string `json:"picture,omitempty"`
	Lud06   string `json:"lud06,omitempty"`
	Lud16   string `json:"lud16,omitempty"`
}
