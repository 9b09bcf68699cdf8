package model

// SourceType classifies where a cited fact came from.
type SourceType string

const (
	// SourcePrivateFile marks facts read from an uploaded document.
	SourcePrivateFile SourceType = "private_file"
	// SourcePublicURL marks facts taken from scraped public pages.
	SourcePublicURL SourceType = "public_url"
	// SourceGenerated marks generative-fallback content and values derived
	// from other extracted numbers.
	SourceGenerated SourceType = "generated"
)

// Citation links one claim in the profile to its source.
type Citation struct {
	Claim      string     `json:"claim"`
	SourceType SourceType `json:"source_type"`
	Ref        string     `json:"ref"`
	Details    string     `json:"details,omitempty"`
}
