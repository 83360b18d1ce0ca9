package playstore

type editResource struct {
	ID                string `json:"id"`
	ExpiryTimeSeconds string `json:"expiryTimeSeconds,omitempty"`
}

// Listing is one localized store listing inside an edit.
type Listing struct {
	Language         string `json:"language"`
	Title            string `json:"title,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	FullDescription  string `json:"fullDescription,omitempty"`
	Video            string `json:"video,omitempty"`
}

type listingsResponse struct {
	Kind     string    `json:"kind,omitempty"`
	Listings []Listing `json:"listings"`
}

type localizedText struct {
	Language string `json:"language"`
	Text     string `json:"text"`
}

// Release is one rollout entry on a track.
type Release struct {
	Name         string          `json:"name,omitempty"`
	Status       string          `json:"status,omitempty"`
	VersionCodes []string        `json:"versionCodes,omitempty"`
	ReleaseNotes []localizedText `json:"releaseNotes,omitempty"`
}

type trackResponse struct {
	Track    string    `json:"track"`
	Releases []Release `json:"releases"`
}
