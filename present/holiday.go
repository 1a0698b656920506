package present

import "github.com/warp/profile-review/profile"

// HolidayKind is the display intent of a holiday change entry.
type HolidayKind string

const (
	HolidayAdd    HolidayKind = "ADD"
	HolidayRemove HolidayKind = "REMOVE"
)

// HolidayRow is one line of a holiday change request card.
type HolidayRow struct {
	Kind        HolidayKind `json:"kind"`
	HolidayName string      `json:"holidayName"`
	HolidayDate string      `json:"holidayDate"`
}

// HolidayEntries lists what a holiday change request asks for. Entries with
// an unknown update type are skipped.
func HolidayEntries(req profile.HolidayChangeRequest) []HolidayRow {
	rows := make([]HolidayRow, 0, len(req.Entries))
	for _, e := range req.Entries {
		var kind HolidayKind
		switch e.UpdateType {
		case profile.HolidayAdd:
			kind = HolidayAdd
		case profile.HolidayRemove:
			kind = HolidayRemove
		default:
			continue
		}
		rows = append(rows, HolidayRow{Kind: kind, HolidayName: e.HolidayName, HolidayDate: e.HolidayDate})
	}
	return rows
}
