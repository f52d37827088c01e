package domain

// RetrievalMethod names the path that produced an answer's context.
type RetrievalMethod string

const (
	MethodLexical    RetrievalMethod = "lexical"
	MethodVector     RetrievalMethod = "vector"
	MethodTruncation RetrievalMethod = "truncation"
)

// ChatMessage is one turn of prior conversation passed along with a
// question. Role is "user" or "assistant".
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Answer is the final result of one retrieve-and-answer request.
type Answer struct {
	Text   string          `json:"text"`
	Method RetrievalMethod `json:"method"`
}
