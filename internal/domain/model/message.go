package model

// AttachmentField is a titled value inside an attachment. Short is a display
// hint that lets the chat client pack fields side by side.
type AttachmentField struct {
	Title string
	Value string
	Short bool
}

// Attachment is a secondary block rendered under the message text.
type Attachment struct {
	Fallback   string
	Text       string
	Pretext    string
	Color      string
	Footer     string
	FooterIcon string
	// Timestamp is in epoch seconds; nil omits it.
	Timestamp *int64
	Fields    []AttachmentField
}

// Message is a fully resolved chat notification, ready for encoding.
type Message struct {
	Channel     string
	Text        string
	Username    string
	Icon        string
	LinkNames   bool
	Attachments []Attachment
}
