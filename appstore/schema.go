package appstore

// Typed shapes for the App Store Connect payloads the engine touches.
// Validation of the dynamic vendor JSON happens here at the transport
// boundary, not inside the sync logic.

type appAttributes struct {
	Name          string `json:"name,omitempty"`
	Subtitle      string `json:"subtitle,omitempty"`
	PrimaryLocale string `json:"primaryLocale,omitempty"`
	BundleID      string `json:"bundleId,omitempty"`
}

type appResource struct {
	ID         string        `json:"id"`
	Attributes appAttributes `json:"attributes"`
}

type appResponse struct {
	Data appResource `json:"data"`
}

type appsResponse struct {
	Data []appResource `json:"data"`
}

type versionAttributes struct {
	VersionString string `json:"versionString"`
	Platform      string `json:"platform,omitempty"`
}

type versionResource struct {
	ID         string            `json:"id"`
	Attributes versionAttributes `json:"attributes"`
}

type versionResponse struct {
	Data versionResource `json:"data"`
}

type versionsResponse struct {
	Data []versionResource `json:"data"`
}

type localizationAttributes struct {
	Locale          string  `json:"locale,omitempty"`
	Description     *string `json:"description,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	PromotionalText *string `json:"promotionalText,omitempty"`
	SupportURL      *string `json:"supportUrl,omitempty"`
	MarketingURL    *string `json:"marketingUrl,omitempty"`
	WhatsNew        *string `json:"whatsNew,omitempty"`
}

type localizationResource struct {
	ID         string                 `json:"id"`
	Attributes localizationAttributes `json:"attributes"`
}

type localizationsResponse struct {
	Data []localizationResource `json:"data"`
}

type relationship struct {
	Data relationshipData `json:"data"`
}

type relationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type localizationCreateRequest struct {
	Data localizationCreateData `json:"data"`
}

type localizationCreateData struct {
	Type          string                  `json:"type"`
	Attributes    localizationAttributes  `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}

type localizationPatchRequest struct {
	Data localizationPatchData `json:"data"`
}

type localizationPatchData struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id"`
	Attributes localizationAttributes `json:"attributes"`
}

type versionCreateRequest struct {
	Data versionCreateData `json:"data"`
}

type versionCreateData struct {
	Type          string                  `json:"type"`
	Attributes    versionAttributes       `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}
