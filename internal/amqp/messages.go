package amqp

import (
	"encoding/json"
	"time"
)

// ExtractionJobMessage tells the worker which job to process. It carries
// only the job ID; the worker fetches the stored document from the
// database so the broker never sees payslip contents.
type ExtractionJobMessage struct {
	JobID     string    `json:"job_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExtractionJobMessage(jobID string) *ExtractionJobMessage {
	return &ExtractionJobMessage{
		JobID:     jobID,
		Timestamp: time.Now(),
	}
}

func (m *ExtractionJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExtractionJobMessageFromJSON(data []byte) (*ExtractionJobMessage, error) {
	var msg ExtractionJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
