package profile

// Profile is the business identity drafts are generated for: who the
// business is, what it sells, who it talks to, and how it sounds.
type Profile struct {
	BusinessName     string   `json:"business_name"`
	Industry         string   `json:"industry"`
	Tone             string   `json:"tone"`
	ProductsServices string   `json:"products_services"`
	TargetAudience   string   `json:"target_audience"`
	USP              string   `json:"usp"`
	Keywords         []string `json:"keywords"`
	Website          string   `json:"website,omitempty"`
	Rotation         string   `json:"rotation,omitempty"`
	Country          string   `json:"country,omitempty"`
}
