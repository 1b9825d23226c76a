package timeular

import "encoding/json"

// ID is an opaque Timeular identifier. The service encodes ids as JSON
// numbers, but they carry no numeric meaning here, so both number and string
// encodings are accepted and kept as text.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// TimeEntry is one recorded time-tracking interval, a read-only snapshot as
// returned by the Timeular API.
type TimeEntry struct {
	ID       ID       `json:"id"`
	Activity Activity `json:"activity"`
	Duration Duration `json:"duration"`
	Note     Note     `json:"note"`
}

type Activity struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	FolderID ID     `json:"folderId"`
}

// Duration holds ISO-8601 timestamps. StartedAt <= StoppedAt is trusted from
// upstream, not validated here.
type Duration struct {
	StartedAt string `json:"startedAt"`
	StoppedAt string `json:"stoppedAt"`
}

// Note is a free-form annotation. Tags and mentions are opaque and passed
// through unmodified.
type Note struct {
	Text     string          `json:"text"`
	Tags     json.RawMessage `json:"tags"`
	Mentions json.RawMessage `json:"mentions"`
}
