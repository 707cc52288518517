package models

// UnattributedLead is an MQL from the sheet that could not be matched to an
// ad, neither by ad_id nor by phone. It is listed for the client to audit.
type UnattributedLead struct {
	Date   string `json:"date"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Form   string `json:"form"`
	Reason string `json:"reason"`
}
