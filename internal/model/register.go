package model

import "time"

// EstimateRegister is the input to the XLSX register export: the estimates
// matching the requested filter, with the period echoed for the summary sheet.
type EstimateRegister struct {
	From      *time.Time
	To        *time.Time
	Estimates []Estimate
}
