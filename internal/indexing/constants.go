package indexing

const (
	// DefaultLimit is the number of hits returned when a query sets no limit.
	DefaultLimit = 5

	// PreviewChars is the length of a content preview.
	PreviewChars = 200

	// ArchiveExtension selects the archives to index in a directory.
	ArchiveExtension = ".zip"
)

// DocumentExtensions are the entry suffixes kept from archives (matched case-insensitively).
var DocumentExtensions = []string{".md", ".mdx"}
