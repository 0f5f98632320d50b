package service

import (
	"errors"
	"testing"

	"github.com/nurpe/fieldserve/internal/model"
)

func TestValidateEstimateTransition(t *testing.T) {
	legal := []struct {
		from, to model.EstimateStatus
	}{
		{model.EstimateStatusDraft, model.EstimateStatusSent},
		{model.EstimateStatusSent, model.EstimateStatusViewed},
		{model.EstimateStatusSent, model.EstimateStatusAccepted},
		{model.EstimateStatusSent, model.EstimateStatusRejected},
		{model.EstimateStatusViewed, model.EstimateStatusAccepted},
		{model.EstimateStatusViewed, model.EstimateStatusRejected},
		{model.EstimateStatusAccepted, model.EstimateStatusConverted},
	}
	for _, tc := range legal {
		if err := ValidateEstimateTransition(tc.from, tc.to); err != nil {
			t.Errorf("%s -> %s should be legal: %v", tc.from, tc.to, err)
		}
	}

	illegal := []struct {
		from, to model.EstimateStatus
	}{
		{model.EstimateStatusDraft, model.EstimateStatusAccepted},
		{model.EstimateStatusDraft, model.EstimateStatusConverted},
		{model.EstimateStatusDraft, model.EstimateStatusViewed},
		{model.EstimateStatusSent, model.EstimateStatusConverted},
		{model.EstimateStatusViewed, model.EstimateStatusSent},
		{model.EstimateStatusRejected, model.EstimateStatusAccepted},
		{model.EstimateStatusRejected, model.EstimateStatusConverted},
		{model.EstimateStatusConverted, model.EstimateStatusDraft},
		{model.EstimateStatusConverted, model.EstimateStatusConverted},
		{model.EstimateStatusAccepted, model.EstimateStatusRejected},
	}
	for _, tc := range illegal {
		err := ValidateEstimateTransition(tc.from, tc.to)
		if !errors.Is(err, ErrIllegalTransition) {
			t.Errorf("%s -> %s should be illegal, got %v", tc.from, tc.to, err)
		}
	}
}

func TestValidateTicketTransition(t *testing.T) {
	if err := ValidateTicketTransition(model.TicketStatusOpen, model.TicketStatusAssigned); err != nil {
		t.Errorf("open -> assigned should be legal: %v", err)
	}
	if err := ValidateTicketTransition(model.TicketStatusOnHold, model.TicketStatusInProgress); err != nil {
		t.Errorf("on_hold -> in_progress should be legal: %v", err)
	}
	if err := ValidateTicketTransition(model.TicketStatusCompleted, model.TicketStatusOpen); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("completed is terminal, got %v", err)
	}
	if err := ValidateTicketTransition(model.TicketStatusOpen, model.TicketStatusCompleted); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("open -> completed should be illegal, got %v", err)
	}
}

func TestValidateProjectTransition(t *testing.T) {
	if err := ValidateProjectTransition(model.ProjectStatusPlanned, model.ProjectStatusActive); err != nil {
		t.Errorf("planned -> active should be legal: %v", err)
	}
	if err := ValidateProjectTransition(model.ProjectStatusCancelled, model.ProjectStatusActive); !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("cancelled is terminal, got %v", err)
	}
}
