package constant

// Document processing status values. PENDING is set at upload, the
// pipeline owns every transition after that.
const (
	DocumentStatusPending    = "PENDING"
	DocumentStatusProcessing = "PROCESSING"
	DocumentStatusCompleted  = "COMPLETED"
	DocumentStatusFailed     = "FAILED"
)

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

// NoContextReply is returned when retrieval finds nothing for the user.
// Deliberate short-circuit: no generation call is made, no citations are
// attached.
const NoContextReply = "I couldn't find any relevant information in your uploaded documents to answer this question. Please make sure you have uploaded documents related to your query."
