package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fieldserve/internal/model"
	"github.com/nurpe/fieldserve/internal/repository"
)

// PhotoStore writes uploaded photo bytes and returns the public URL the row
// will carry.
type PhotoStore interface {
	Put(ticketID uuid.UUID, fileName string, content io.Reader) (publicURL string, size int64, err error)
}

type TicketService struct {
	tickets *repository.TicketRepository
	catalog *repository.CatalogRepository
	photos  PhotoStore
}

func NewTicketService(tickets *repository.TicketRepository, catalog *repository.CatalogRepository, photos PhotoStore) *TicketService {
	return &TicketService{tickets: tickets, catalog: catalog, photos: photos}
}

type CreateTicketInput struct {
	CustomerID   uuid.UUID
	Title        string
	Description  string
	SiteLocation string
	Priority     model.TicketPriority
	AssignedTo   *uuid.UUID
	ScheduledAt  *time.Time
	Principal    model.Principal
}

func (s *TicketService) Get(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]model.Ticket, error) {
	return s.tickets.List(ctx, filter)
}

func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*model.Ticket, error) {
	if !input.Principal.CanManage() {
		return nil, ErrPermissionDenied
	}
	if input.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	if _, err := s.catalog.GetCustomer(ctx, input.CustomerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: customer %s", ErrNotFound, input.CustomerID)
		}
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = model.TicketPriorityNormal
	}

	status := model.TicketStatusOpen
	if input.AssignedTo != nil {
		status = model.TicketStatusAssigned
	}

	ticket := &model.Ticket{
		CustomerID:   input.CustomerID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		SiteLocation: input.SiteLocation,
		Status:       status,
		Priority:     priority,
		AssignedTo:   input.AssignedTo,
		ScheduledAt:  input.ScheduledAt,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	return s.Get(ctx, ticket.ID)
}

type TicketStatusInput struct {
	TicketID   uuid.UUID
	Status     model.TicketStatus
	AssignedTo *uuid.UUID
	Principal  model.Principal
}

// SetStatus applies a ticket status change after validating it against the
// transition table. Technicians may only move their own tickets.
func (s *TicketService) SetStatus(ctx context.Context, input TicketStatusInput) (*model.Ticket, error) {
	ticket, err := s.Get(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}

	if !input.Principal.CanManage() {
		if !input.Principal.IsTechnician() || ticket.AssignedTo == nil || *ticket.AssignedTo != input.Principal.UserID {
			return nil, ErrPermissionDenied
		}
	}

	if err := ValidateTicketTransition(ticket.Status, input.Status); err != nil {
		return nil, err
	}

	extra := map[string]interface{}{}
	if input.Status == model.TicketStatusAssigned && input.AssignedTo != nil {
		extra["assigned_to"] = *input.AssignedTo
	}
	if input.Status == model.TicketStatusCompleted {
		extra["completed_at"] = time.Now().UTC()
	}

	if err := s.tickets.SetStatus(ctx, input.TicketID, ticket.Status, input.Status, extra); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: status changed concurrently", ErrConflict)
		}
		return nil, err
	}
	return s.Get(ctx, input.TicketID)
}

type UploadPhotoInput struct {
	TicketID    uuid.UUID
	FileName    string
	ContentType string
	Content     io.Reader
	Principal   model.Principal
}

// UploadPhoto stores the photo bytes in the bucket and records the row with
// its public URL.
func (s *TicketService) UploadPhoto(ctx context.Context, input UploadPhotoInput) (*model.TicketPhoto, error) {
	ticket, err := s.Get(ctx, input.TicketID)
	if err != nil {
		return nil, err
	}

	if !input.Principal.CanManage() {
		if !input.Principal.IsTechnician() || ticket.AssignedTo == nil || *ticket.AssignedTo != input.Principal.UserID {
			return nil, ErrPermissionDenied
		}
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}

	publicURL, size, err := s.photos.Put(ticket.ID, fileName, input.Content)
	if err != nil {
		return nil, err
	}

	photo := &model.TicketPhoto{
		TicketID:    ticket.ID,
		FileName:    fileName,
		ContentType: input.ContentType,
		SizeBytes:   size,
		PublicURL:   publicURL,
		UploadedBy:  input.Principal.UserID,
	}
	if err := s.tickets.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *TicketService) ListPhotos(ctx context.Context, ticketID uuid.UUID) ([]model.TicketPhoto, error) {
	if _, err := s.Get(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.tickets.ListPhotos(ctx, ticketID)
}
