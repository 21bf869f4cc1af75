package model

// Speaker labels persisted on transcript segments. The wire payload
// carries a numeric code; 1 means agent, anything else customer.
const (
	SpeakerAgent    = "agent"
	SpeakerCustomer = "customer"
)

// RawCall is the ingestion wire payload. Container fields are pointers
// so structural validation can tell an absent object apart from an
// empty one.
type RawCall struct {
	CallID     *int64          `json:"call_id"`
	Parameters *CallParameters `json:"parameters"`
	Paragraphs *Paragraphs     `json:"paragraphs"`
}

type CallParameters struct {
	FileName      string      `json:"file_name"`
	AgentName     string      `json:"agent_name"`
	CustomerName  string      `json:"customer_name"`
	DurationSec   *float64    `json:"duration_sec"`
	TimeDatestamp interface{} `json:"time_datestamp"`
}

type Paragraphs struct {
	Transcripts []TranscriptEntry `json:"transcripts"`
}

// TranscriptEntry is one raw utterance. Trans is a pointer because the
// first entry's text is required to exist, even when empty.
type TranscriptEntry struct {
	Trans     *string `json:"trans"`
	Speaker   int     `json:"speaker"`
	StartTime float64 `json:"start_time"`
	TillTime  float64 `json:"till_time"`
}

// CallMetadataRecord is the call-level row. The struct doubles as the
// JSON document persisted in the metadata column; the vector rides in
// its own column and stays out of the document.
type CallMetadataRecord struct {
	CallID       int64       `json:"call_id"`
	AgentName    string      `json:"agent_name"`
	CustomerName string      `json:"customer_name"`
	FileName     string      `json:"file_name"`
	CallDuration float64     `json:"call_duration"`
	DateTime     interface{} `json:"date_time"`

	FileNameVector []float32 `json:"-"`
}

// TranscriptSegmentRecord is one persisted utterance with its vector.
type TranscriptSegmentRecord struct {
	CallID    int64
	Text      string
	Speaker   string
	StartTime float64
	EndTime   float64
	Embedding []float32
}
