package service

import (
	"fmt"

	"github.com/nurpe/fieldserve/internal/model"
)

// estimateTransitions is the full set of legal estimate status moves. Anything
// absent is illegal, regardless of what a client chooses to show. Converted is
// terminal.
var estimateTransitions = map[model.EstimateStatus][]model.EstimateStatus{
	model.EstimateStatusDraft:    {model.EstimateStatusSent},
	model.EstimateStatusSent:     {model.EstimateStatusViewed, model.EstimateStatusAccepted, model.EstimateStatusRejected},
	model.EstimateStatusViewed:   {model.EstimateStatusAccepted, model.EstimateStatusRejected},
	model.EstimateStatusAccepted: {model.EstimateStatusConverted},
}

// ValidateEstimateTransition returns ErrIllegalTransition unless from → to is
// in the transition table.
func ValidateEstimateTransition(from, to model.EstimateStatus) error {
	for _, allowed := range estimateTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

var ticketTransitions = map[model.TicketStatus][]model.TicketStatus{
	model.TicketStatusOpen:       {model.TicketStatusAssigned, model.TicketStatusCancelled},
	model.TicketStatusAssigned:   {model.TicketStatusInProgress, model.TicketStatusOnHold, model.TicketStatusCancelled},
	model.TicketStatusInProgress: {model.TicketStatusOnHold, model.TicketStatusCompleted, model.TicketStatusCancelled},
	model.TicketStatusOnHold:     {model.TicketStatusAssigned, model.TicketStatusInProgress, model.TicketStatusCancelled},
}

func ValidateTicketTransition(from, to model.TicketStatus) error {
	for _, allowed := range ticketTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}

var projectTransitions = map[model.ProjectStatus][]model.ProjectStatus{
	model.ProjectStatusPlanned: {model.ProjectStatusActive, model.ProjectStatusCancelled},
	model.ProjectStatusActive:  {model.ProjectStatusOnHold, model.ProjectStatusCompleted, model.ProjectStatusCancelled},
	model.ProjectStatusOnHold:  {model.ProjectStatusActive, model.ProjectStatusCancelled},
}

func ValidateProjectTransition(from, to model.ProjectStatus) error {
	for _, allowed := range projectTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
