package hang

import "encoding/json"

// Kind is the normalized envelope discriminator. The wire uses "action" on
// newer frames and "type" on older ones; both decode to the same Kind and
// the raw tag never leaves this file.
type Kind string

const (
	// Client -> server
	KindAuthenticate Kind = "authenticate"
	KindPing         Kind = "ping"
	KindSendMessage  Kind = "send_message"
	KindLoadMessage  Kind = "load_message"

	// Server -> client
	KindStatus Kind = "status"
	KindUpdate Kind = "update"
)

// Envelope is the wire message. Content is the verb-specific payload.
type Envelope struct {
	Kind    Kind
	Content json.RawMessage
}

// wireEnvelope covers every observed frame revision. Status frames carry
// their payload at the top level ({"type":"status","message":"success"})
// rather than nested under content.
type wireEnvelope struct {
	Action  string          `json:"action,omitempty"`
	Type    string          `json:"type,omitempty"`
	Content json.RawMessage `json:"content,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// AuthenticatePayload carries the bearer token for the post-connect handshake.
type AuthenticatePayload struct {
	Token string `json:"token"`
}

// SendMessagePayload publishes a message to a room.
type SendMessagePayload struct {
	MessageChannel int64  `json:"message_channel"`
	Content        string `json:"content"`
	Reply          *int64 `json:"reply"`
}

// LoadMessagePayload requests a page of history. A nil MessageID asks for
// the newest page; otherwise messages with id <= MessageID are returned.
type LoadMessagePayload struct {
	MessageChannel int64  `json:"message_channel"`
	MessageID      *int64 `json:"message_id,omitempty"`
}

// StatusPayload acknowledges a client action. Anything other than "success"
// is an error string.
type StatusPayload struct {
	Message string `json:"message"`
}

// NewEnvelope builds an envelope with a marshaled payload.
func NewEnvelope(kind Kind, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, WrapError(ErrorSerialization, "marshal envelope content", err)
	}
	return Envelope{Kind: kind, Content: raw}, nil
}

// MarshalJSON writes the send-direction wire form {"action":...,"content":...}.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEnvelope{Action: string(e.Kind), Content: e.Content})
}

// DecodeEnvelope parses a raw frame into a normalized Envelope. Malformed
// JSON or a missing discriminator yields a decode error; callers log and
// drop the frame rather than failing the connection.
func DecodeEnvelope(raw []byte) (Envelope, error) {
	var w wireEnvelope
	if err := json.Unmarshal(raw, &w); err != nil {
		return Envelope{}, WrapError(ErrorDecode, "malformed frame", err)
	}
	tag := w.Action
	if tag == "" {
		tag = w.Type
	}
	if tag == "" {
		return Envelope{}, NewError(ErrorDecode, "frame has no action or type discriminator")
	}

	env := Envelope{Kind: Kind(tag), Content: w.Content}
	if env.Kind == KindStatus && len(w.Message) > 0 {
		// Lift the top-level status message into a content payload so
		// consumers see one shape.
		content, err := json.Marshal(wireEnvelope{Message: w.Message})
		if err != nil {
			return Envelope{}, WrapError(ErrorSerialization, "normalize status frame", err)
		}
		env.Content = content
	}
	return env, nil
}

// Status decodes the content of a status envelope.
func (e Envelope) Status() (StatusPayload, error) {
	var p StatusPayload
	if err := json.Unmarshal(e.Content, &p); err != nil {
		return StatusPayload{}, WrapError(ErrorDecode, "decode status content", err)
	}
	return p, nil
}

// Update decodes the content of an update envelope. The content is a bare
// JSON string naming what changed.
func (e Envelope) Update() (UpdateKind, error) {
	var s string
	if err := json.Unmarshal(e.Content, &s); err != nil {
		return "", WrapError(ErrorDecode, "decode update content", err)
	}
	return UpdateKind(s), nil
}

// Messages decodes a load_message response page.
func (e Envelope) Messages() ([]Message, error) {
	var msgs []Message
	if err := json.Unmarshal(e.Content, &msgs); err != nil {
		return nil, WrapError(ErrorDecode, "decode load_message content", err)
	}
	return msgs, nil
}

// Message decodes a send_message broadcast.
func (e Envelope) Message() (Message, error) {
	var m Message
	if err := json.Unmarshal(e.Content, &m); err != nil {
		return Message{}, WrapError(ErrorDecode, "decode send_message content", err)
	}
	return m, nil
}
