package vertec

// ObjectRef is a foreign-key-like pointer inside a Vertec record. It carries
// identity only, never a full object.
type ObjectRef struct {
	ID string `json:"objref"`
}

// Project is a billable project record.
type Project struct {
	ObjID string `json:"objid"`
	Code  string `json:"code"`
}

// Entry is an open (unbilled) performance record.
type Entry struct {
	ObjID   string    `json:"objid"`
	Datum   string    `json:"datum"`
	Projekt ObjectRef `json:"projekt"`
	Phase   ObjectRef `json:"phase"`
	Text    string    `json:"text"`
	WertExt string    `json:"wertext"`
}
