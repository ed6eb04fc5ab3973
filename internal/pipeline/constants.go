package pipeline

// Defaults for ingestion. These mirror the limits of the extraction
// capability, not anything negotiable per request.
const (
	// DefaultDescription is used for rows whose description column was
	// never resolved.
	DefaultDescription = "Unknown"

	// maxDocumentChars bounds the text prefix sent to the extraction
	// capability for document inputs.
	maxDocumentChars = 15000

	// DemoCompanyName and DemoCompanyIndustry identify the single-tenant
	// demo company every upload is scoped to.
	DemoCompanyName     = "Demo Corp"
	DemoCompanyIndustry = "Retail"
)
