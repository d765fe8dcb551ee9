package domain

// ResponseFormat is the structured-output hint sent with a prompt.
type ResponseFormat string

const (
	// FormatJSON asks the provider for a bare JSON object.
	FormatJSON ResponseFormat = "json_object"
	// FormatText asks for plain text.
	FormatText ResponseFormat = "text"
)

// ModelClass selects which configured model serves a prompt.
type ModelClass string

const (
	// ModelStandard is the model used for structured searches.
	ModelStandard ModelClass = "standard"
	// ModelLight is the cheaper model used for lookups and basic searches.
	ModelLight ModelClass = "light"
)

// PromptSpec is the fully assembled instruction/content pair for the completion provider.
// It is derived from validated criteria only.
type PromptSpec struct {
	System      string
	User        string
	Format      ResponseFormat
	Temperature float32
	MaxTokens   int
	Model       ModelClass
}
