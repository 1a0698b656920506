// Package present projects reconciliation output into display rows.
//
// Nothing here mutates a DiffResult. Values keep their raw form next to the
// text that should be shown, and long values are flagged so the caller can
// offer a "view all" expansion instead of rendering them inline.
package present

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/warp/profile-review/profile"
	"github.com/warp/profile-review/reconcile"
)

const (
	DefaultLongTextThreshold = 18
	DefaultPlaceholder       = "—"
)

// Options tune the projection. Zero values fall back to the defaults.
type Options struct {
	LongTextThreshold int
	Placeholder       string
}

// Presenter renders DiffResults.
type Presenter struct {
	opts Options
}

func New(opts Options) *Presenter {
	if opts.LongTextThreshold <= 0 {
		opts.LongTextThreshold = DefaultLongTextThreshold
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	return &Presenter{opts: opts}
}

// Present renders diff with the default options.
func Present(diff reconcile.DiffResult) DisplayModel {
	return New(Options{}).Present(diff)
}

// =============================================================================
// DISPLAY MODEL
// =============================================================================

// Value is one side of a change.
type Value struct {
	Raw        string `json:"raw"`
	Display    string `json:"display"`
	IsLongText bool   `json:"isLongText"`
}

// Segment is a piece of the character-level diff between old and new.
type Segment struct {
	Op   string `json:"op"` // equal, insert, delete
	Text string `json:"text"`
}

// FieldRow is a labelled old -> new pair. Inline is only filled when either
// side is long text.
type FieldRow struct {
	Field  string               `json:"field"`
	Label  string               `json:"label"`
	Kind   reconcile.ChangeKind `json:"kind,omitempty"`
	Old    Value                `json:"old"`
	New    Value                `json:"new"`
	Inline []Segment            `json:"inline,omitempty"`
}

// AddressSection groups every change of one address type.
type AddressSection struct {
	AddressType profile.AddressType `json:"addressType"`
	Title       string              `json:"title"`
	Removed     bool                `json:"removed"`
	Rows        []FieldRow          `json:"rows"`
}

type DocumentRow struct {
	Label      string `json:"label"`
	DocType    string `json:"docType"`
	DocumentID string `json:"documentId,omitempty"`
	FileURL    string `json:"fileUrl,omitempty"`
	UploadedAt string `json:"uploadedAt,omitempty"`
	Verified   bool   `json:"verified"`
}

type PhotoRow struct {
	Old Value `json:"old"`
	New Value `json:"new"`
}

// DisplayModel is the read-only projection of a DiffResult.
type DisplayModel struct {
	Fields    []FieldRow       `json:"fields"`
	Addresses []AddressSection `json:"addresses"`
	Documents []DocumentRow    `json:"documents"`
	Photo     *PhotoRow        `json:"photo,omitempty"`
	Empty     bool             `json:"empty"`
}

// =============================================================================
// PROJECTION
// =============================================================================

// Present groups and labels diff.
func (p *Presenter) Present(diff reconcile.DiffResult) DisplayModel {
	m := DisplayModel{
		Fields:    make([]FieldRow, 0, len(diff.ScalarChanges)),
		Addresses: p.sections(diff.AddressDiffs),
		Documents: make([]DocumentRow, 0, len(diff.NewDocuments)),
		Empty:     diff.IsEmpty(),
	}

	for _, c := range diff.ScalarChanges {
		m.Fields = append(m.Fields, p.row(c, ""))
	}

	for _, d := range diff.NewDocuments {
		m.Documents = append(m.Documents, DocumentRow{
			Label:      Label(d.DocType),
			DocType:    d.DocType,
			DocumentID: d.DocumentID,
			FileURL:    d.FileURL,
			UploadedAt: d.UploadedAt,
			Verified:   d.Verified,
		})
	}

	if diff.PhotoChange != nil {
		m.Photo = &PhotoRow{
			Old: p.value(diff.PhotoChange.OldURL),
			New: p.value(diff.PhotoChange.NewURL),
		}
	}
	return m
}

// sections keeps the order in which each address type first appears.
func (p *Presenter) sections(diffs []reconcile.AddressDiff) []AddressSection {
	out := []AddressSection{}
	pos := make(map[profile.AddressType]int)
	for _, d := range diffs {
		i, ok := pos[d.AddressType]
		if !ok {
			i = len(out)
			pos[d.AddressType] = i
			out = append(out, AddressSection{
				AddressType: d.AddressType,
				Title:       AddressTitle(d.AddressType),
				Rows:        []FieldRow{},
			})
		}
		if d.Kind == reconcile.KindRemoved {
			out[i].Removed = true
		}
		for _, c := range d.FieldChanges {
			out[i].Rows = append(out[i].Rows, p.row(c, d.Kind))
		}
	}
	return out
}

func (p *Presenter) row(c reconcile.FieldChange, kind reconcile.ChangeKind) FieldRow {
	r := FieldRow{
		Field: c.Field,
		Label: Label(c.Field),
		Kind:  kind,
		Old:   p.value(c.OldValue),
		New:   p.value(c.NewValue),
	}
	if r.Old.IsLongText || r.New.IsLongText {
		r.Inline = inlineDiff(c.OldValue, c.NewValue)
	}
	return r
}

func (p *Presenter) value(raw string) Value {
	v := Value{Raw: raw, Display: raw}
	if raw == "" {
		v.Display = p.opts.Placeholder
	}
	v.IsLongText = utf8.RuneCountInString(raw) > p.opts.LongTextThreshold
	return v
}

func inlineDiff(oldText, newText string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		var op string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "insert"
		case diffmatchpatch.DiffDelete:
			op = "delete"
		default:
			op = "equal"
		}
		segments = append(segments, Segment{Op: op, Text: d.Text})
	}
	return segments
}

// =============================================================================
// LABELS
// =============================================================================

// Label turns a machine field name into title case: houseNo -> "House No",
// date_of_birth -> "Date Of Birth", photoURL -> "Photo URL".
func Label(field string) string {
	words := splitWords(field)
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.English, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// AddressTitle renders an address type: OFFICE -> "Office".
func AddressTitle(t profile.AddressType) string {
	s := strings.ReplaceAll(strings.ToLower(string(t)), "_", " ")
	return cases.Title(language.English).String(s)
}

func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
