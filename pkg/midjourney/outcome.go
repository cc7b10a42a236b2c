package midjourney

// OutcomeType tags an Outcome.
type OutcomeType string

const (
	// OutcomeProgress reports an intermediate state of a job.
	OutcomeProgress OutcomeType = "progress"

	// OutcomeFinish is the final result of a job. It is always the last
	// element of a sequence.
	OutcomeFinish OutcomeType = "finish"
)

// Outcome is one element of a command's outcome sequence.
type Outcome struct {
	Type OutcomeType `json:"type" yaml:"type"`

	// Percent is the reported progress, 0 while waiting and 100 when finished.
	Percent int `json:"percent" yaml:"percent"`

	// MessageID is the message the outcome was read from. For a finished
	// outcome it is the message that variations are requested on.
	MessageID string `json:"message_id" yaml:"message_id"`

	// Content is the raw message content.
	Content string `json:"content" yaml:"content"`

	// Prompt is the prompt text echoed by the bot.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// URI is the image URL. Progress outcomes carry a preview when the bot
	// attached one.
	URI string `json:"uri,omitempty" yaml:"uri,omitempty"`

	// Hash is the job hash derived from a finished image URL.
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`

	// Flags are the message flags, echoed back on variation requests.
	Flags int `json:"flags,omitempty" yaml:"flags,omitempty"`
}

// Finished reports whether o is a finish outcome.
func (o *Outcome) Finished() bool {
	return o != nil && o.Type == OutcomeFinish
}

// outcomeFrom converts a correlated signal to an Outcome.
func outcomeFrom(s signal) *Outcome {
	var msg *Message
	switch e := s.event.(type) {
	case *MessageCreate:
		msg = &e.Message
	case *MessageUpdate:
		msg = &e.Message
	default:
		return nil
	}

	o := &Outcome{
		Type:      OutcomeProgress,
		MessageID: msg.ID,
		Content:   msg.Content,
		Prompt:    ExtractPrompt(msg.Content),
		URI:       msg.FirstAttachmentURL(),
		Flags:     msg.Flags,
	}
	switch s.stage {
	case stageCompletion:
		o.Type = OutcomeFinish
		o.Percent = 100
		o.Hash = jobHash(o.URI)
	case stageProgress:
		o.Percent, _ = parsePercent(msg.Content)
	}
	return o
}
