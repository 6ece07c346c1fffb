package database

import (
	"time"

	"millstat/report"
)

// LotResult is one tested cotton lot as stored in the analytics DB.
// Metric pointers are nil where the lab left the cell blank.
type LotResult struct {
	ID        string `json:"id"`
	LotNo     string `json:"lot_no"`
	Party     string `json:"party"`
	Station   string `json:"station"`
	Variety   string `json:"variety"`
	IssueDate string `json:"issue_date"`

	NoOfBale         *float64 `json:"no_of_bale"`
	UHML             *float64 `json:"uhml"`
	Mic              *float64 `json:"mic"`
	Str              *float64 `json:"str"`
	Rd               *float64 `json:"rd"`
	PlusB            *float64 `json:"plus_b"`
	SF               *float64 `json:"sf"`
	UI               *float64 `json:"ui"`
	Elong            *float64 `json:"elong"`
	Trash            *float64 `json:"trash"`
	Moist            *float64 `json:"moist"`
	MinMic           *float64 `json:"min_mic"`
	MinMicBalePerLot *float64 `json:"min_mic_bale_per_lot"`
	Mat              *float64 `json:"mat"`
	CGrade           string   `json:"c_grade"`
}

// MixingIssue is one issue of bales from a lot into a mixing on a line
type MixingIssue struct {
	ID        string   `json:"id"`
	Unit      string   `json:"unit"`
	Line      string   `json:"line"`
	Cotton    string   `json:"cotton"`
	MixingNo  string   `json:"mixing_no"`
	Mixing    string   `json:"mixing"`
	LotNo     string   `json:"lot_no"`
	IssueDate string   `json:"issue_date"`
	NoOfBale  *float64 `json:"no_of_bale"`
}

// MixingCode maps a cotton code to its variety name
type MixingCode struct {
	Cotton  string `json:"cotton"`
	Variety string `json:"variety"`
}

// PendingLot is a lot received at the mill but not yet tested
type PendingLot struct {
	ID           string `json:"id"`
	LotNo        string `json:"lot_no"`
	Party        string `json:"party"`
	Station      string `json:"station"`
	ReceivedDate string `json:"received_date"`
}

// ReportJob tracks one streamed summary run in the app DB
type ReportJob struct {
	JobID        string    `json:"job_id"`
	Status       string    `json:"status"`
	Progress     int       `json:"progress"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UploadLog records one template upload attempt
type UploadLog struct {
	ID           int64     `json:"id"`
	Filename     string    `json:"filename"`
	RowsInserted int       `json:"rows_inserted"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToRecord adapts a lot row for the summary engine
func (l LotResult) ToRecord() report.Record {
	return report.Record{
		IssueDate: l.IssueDate,
		Variety:   l.Variety,
		Values: map[string]interface{}{
			"no_of_bale": deref(l.NoOfBale),
			"uhml":       deref(l.UHML),
			"mic":        deref(l.Mic),
			"str":        deref(l.Str),
			"rd":         deref(l.Rd),
			"plus_b":     deref(l.PlusB),
			"sf":         deref(l.SF),
			"ui":         deref(l.UI),
			"elong":      deref(l.Elong),
			"trash":      deref(l.Trash),
			"moist":      deref(l.Moist),
			"min_mic":    deref(l.MinMic),
		},
	}
}

func deref(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
