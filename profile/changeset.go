package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Reserved change-set keys. Everything else is a scalar field.
const (
	KeyAddresses       = "addresses"
	KeyAddressID       = "addressId"
	KeyDocuments       = "documents"
	KeyPhotoURL        = "photoUrl"
	KeyLegacyPhotoURL  = "profilePhotoUrl"
	keyAddressDeleted  = "isDeleted"
	keyDocumentIDShort = "id"
)

// IsReservedKey reports whether key names a collection or photo entry
// rather than a scalar field.
func IsReservedKey(key string) bool {
	switch key {
	case KeyAddresses, KeyAddressID, KeyDocuments, KeyPhotoURL, KeyLegacyPhotoURL:
		return true
	}
	return false
}

// =============================================================================
// CANONICAL CHANGE-SET
// =============================================================================

// Field is one scalar entry of a change-set overlay.
type Field struct {
	Name  string
	Value any
}

// ProposedAddress is an address entry of a change-set. IsDeleted marks an
// address the employee asked to drop.
type ProposedAddress struct {
	AddressRecord
	IsDeleted bool `json:"isDeleted,omitempty"`
}

// ChangeSet is the canonical proposed overlay. Fields keep the order in which
// they were submitted.
type ChangeSet struct {
	Fields []Field

	// HasAddresses is true when the submission carried an address list, even
	// an empty one.
	HasAddresses bool
	Addresses    []ProposedAddress

	// AddressID references the address to drop for ADDRESS_DELETE requests.
	AddressID string

	Documents []DocumentRecord
	PhotoURL  string
}

// Field returns the proposed value for a scalar field.
func (cs ChangeSet) Field(name string) (any, bool) {
	for _, f := range cs.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// ChangeSetFromBaseline builds a change-set that proposes exactly what the
// baseline already holds. Fields are emitted in key order.
func ChangeSetFromBaseline(b *Baseline) ChangeSet {
	cs := ChangeSet{}
	if b == nil {
		return cs
	}
	names := make([]string, 0, len(b.Fields))
	for name := range b.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cs.Fields = append(cs.Fields, Field{Name: name, Value: b.Fields[name]})
	}
	cs.HasAddresses = true
	for _, a := range b.Addresses {
		cs.Addresses = append(cs.Addresses, ProposedAddress{AddressRecord: a})
	}
	cs.Documents = append(cs.Documents, b.Documents...)
	cs.PhotoURL = b.PhotoURL
	return cs
}

// =============================================================================
// RAW CHANGE-SET - boundary representation
// =============================================================================

// RawChangeSet is a change-set as delivered by storage or the wire: either a
// JSON object or a JSON string holding an encoded object.
type RawChangeSet []byte

// EncodedChangeSet wraps an already encoded change-set string.
func EncodedChangeSet(s string) RawChangeSet {
	b, _ := json.Marshal(s)
	return RawChangeSet(b)
}

// ObjectChangeSet marshals v as a structured change-set.
func ObjectChangeSet(v any) (RawChangeSet, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return RawChangeSet(b), nil
}

// MarshalJSON emits the raw value; bytes that are not valid JSON are emitted
// as a JSON string so a broken submission still renders.
func (r RawChangeSet) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(r)) == 0 {
		return []byte("null"), nil
	}
	if !json.Valid(r) {
		return json.Marshal(string(r))
	}
	return []byte(r), nil
}

func (r *RawChangeSet) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// DecodeChangeSet converts a raw change-set into the canonical shape. On
// failure it returns an empty ChangeSet and an error wrapping
// ErrChangeSetMalformed.
func DecodeChangeSet(raw RawChangeSet) (ChangeSet, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ChangeSet{}, nil
	}

	payload := trimmed
	if trimmed[0] == '"' {
		var encoded string
		if err := json.Unmarshal(trimmed, &encoded); err != nil {
			return ChangeSet{}, malformed(err)
		}
		payload = []byte(strings.TrimSpace(encoded))
	}

	cs, err := decodeObject(payload)
	if err != nil {
		return ChangeSet{}, malformed(err)
	}
	return cs, nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrChangeSetMalformed, err)
}

func decodeObject(payload []byte) (ChangeSet, error) {
	var cs ChangeSet
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return cs, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return cs, errors.New("change-set is not an object")
	}

	var legacyPhoto string
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return cs, err
		}
		key, _ := tok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return cs, fmt.Errorf("key %q: %w", key, err)
		}

		switch key {
		case KeyAddresses:
			addrs, present, err := decodeAddresses(value)
			if err != nil {
				return cs, fmt.Errorf("addresses: %w", err)
			}
			cs.HasAddresses = present
			cs.Addresses = addrs
		case KeyAddressID:
			v, err := decodeValue(value)
			if err != nil {
				return cs, fmt.Errorf("addressId: %w", err)
			}
			cs.AddressID = Stringify(v)
		case KeyDocuments:
			docs, err := decodeDocuments(value)
			if err != nil {
				return cs, fmt.Errorf("documents: %w", err)
			}
			cs.Documents = docs
		case KeyPhotoURL, KeyLegacyPhotoURL:
			v, err := decodeValue(value)
			if err != nil {
				return cs, fmt.Errorf("%s: %w", key, err)
			}
			if key == KeyPhotoURL {
				cs.PhotoURL = Stringify(v)
			} else {
				legacyPhoto = Stringify(v)
			}
		default:
			v, err := decodeValue(value)
			if err != nil {
				return cs, fmt.Errorf("key %q: %w", key, err)
			}
			// duplicate keys: last one wins, first position kept
			if i, ok := index[key]; ok {
				cs.Fields[i].Value = v
				continue
			}
			index[key] = len(cs.Fields)
			cs.Fields = append(cs.Fields, Field{Name: key, Value: v})
		}
	}

	if _, err := dec.Token(); err != nil {
		return cs, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return cs, errors.New("trailing data after change-set object")
	}

	if cs.PhotoURL == "" {
		cs.PhotoURL = legacyPhoto
	}
	return cs, nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeRecords(raw json.RawMessage) ([]map[string]any, bool, error) {
	v, err := decodeValue(raw)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		return nil, false, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, false, errors.New("expected a list")
	}
	records := make([]map[string]any, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("entry %d is not an object", i)
		}
		records = append(records, m)
	}
	return records, true, nil
}

func decodeAddresses(raw json.RawMessage) ([]ProposedAddress, bool, error) {
	records, present, err := decodeRecords(raw)
	if err != nil || !present {
		return nil, present, err
	}
	addrs := make([]ProposedAddress, 0, len(records))
	for _, m := range records {
		addrs = append(addrs, ProposedAddress{
			AddressRecord: AddressRecord{
				AddressID:   Stringify(m["addressId"]),
				AddressType: AddressType(Stringify(m["addressType"])),
				HouseNo:     Stringify(m["houseNo"]),
				StreetName:  Stringify(m["streetName"]),
				City:        Stringify(m["city"]),
				State:       Stringify(m["state"]),
				Country:     Stringify(m["country"]),
				Pincode:     Stringify(m["pincode"]),
			},
			IsDeleted: Stringify(m[keyAddressDeleted]) == "true",
		})
	}
	return addrs, true, nil
}

func decodeDocuments(raw json.RawMessage) ([]DocumentRecord, error) {
	records, _, err := decodeRecords(raw)
	if err != nil {
		return nil, err
	}
	docs := make([]DocumentRecord, 0, len(records))
	for _, m := range records {
		id := Stringify(m["documentId"])
		if id == "" {
			id = Stringify(m[keyDocumentIDShort])
		}
		docs = append(docs, DocumentRecord{
			DocumentID: id,
			DocType:    Stringify(m["docType"]),
			FileURL:    Stringify(m["fileUrl"]),
			UploadedAt: Stringify(m["uploadedAt"]),
			Verified:   Stringify(m["verified"]) == "true",
		})
	}
	return docs, nil
}
