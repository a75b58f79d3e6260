package domain

// FieldKind selects the input widget used for a form field.
type FieldKind string

const (
	FieldText      FieldKind = "text"
	FieldMultiline FieldKind = "multiline"
	FieldChoice    FieldKind = "choice"
	FieldDate      FieldKind = "date"
	FieldTime      FieldKind = "time"
)

// FormField describes one input in a form descriptor.
type FormField struct {
	ID          string
	Label       string
	Kind        FieldKind
	Required    bool
	Placeholder string
	Options     []string // for FieldChoice
}

// Form is the structured form descriptor a handler asks the transport to
// render. The transport owns the widget schema; this is deliberately opaque
// to the intake logic.
type Form struct {
	ID       string // correlation id, echoed back in FormSubmission.FormID
	Category string // category tag, echoed back in FormSubmission.Category
	Title    string
	Intro    string
	Fields   []FormField
}

// CardTone colors a terminal card.
type CardTone string

const (
	ToneGood      CardTone = "good"
	ToneAttention CardTone = "attention"
)

// Fact is one label/value pair on a card.
type Fact struct {
	Label string
	Value string
}

// Card is a rendered confirmation or error message.
type Card struct {
	Title  string
	Tone   CardTone
	Facts  []Fact
	Body   string // free-text block after the facts, e.g. the operation description
	Footer string
}
