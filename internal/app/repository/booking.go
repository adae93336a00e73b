package repository

import (
	"fmt"

	"backoffice/internal/app/ds"
)

// GetBooking loads an agency's booking without its services.
func (r *Repository) GetBooking(agencyID, bookingID uint) (*ds.Booking, error) {
	var booking ds.Booking
	err := r.db.Where("agency_id = ? AND id = ?", agencyID, bookingID).First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingWithServices preloads the booking's service lines.
func (r *Repository) GetBookingWithServices(agencyID, bookingID uint) (*ds.Booking, error) {
	var booking ds.Booking
	err := r.db.Preload("Services").
		Where("agency_id = ? AND id = ?", agencyID, bookingID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBookingServices returns the selected service lines of a booking. Every
// requested id must belong to the booking.
func (r *Repository) GetBookingServices(bookingID uint, serviceIDs []uint) ([]ds.BookingService, error) {
	var services []ds.BookingService
	err := r.db.Where("booking_id = ? AND id IN ?", bookingID, serviceIDs).Find(&services).Error
	if err != nil {
		return nil, err
	}
	if len(services) != len(serviceIDs) {
		return nil, fmt.Errorf("booking %d: %d of %d selected services not found",
			bookingID, len(serviceIDs)-len(services), len(serviceIDs))
	}
	return services, nil
}

// GetClients loads the payers in the order their ids were supplied, so the
// batch processes payers in request order.
func (r *Repository) GetClients(agencyID uint, clientIDs []uint) ([]ds.Client, error) {
	var clients []ds.Client
	err := r.db.Where("agency_id = ? AND id IN ?", agencyID, clientIDs).Find(&clients).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]ds.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}

	ordered := make([]ds.Client, 0, len(clientIDs))
	for _, id := range clientIDs {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("client %d not found", id)
		}
		ordered = append(ordered, c)
	}
	return ordered, nil
}

// GetAgency loads a tenant.
func (r *Repository) GetAgency(agencyID uint) (*ds.Agency, error) {
	var agency ds.Agency
	if err := r.db.First(&agency, agencyID).Error; err != nil {
		return nil, err
	}
	return &agency, nil
}

// MarkBookingInvoiced flips the booking status once at least one voucher
// was created for it.
func (r *Repository) MarkBookingInvoiced(bookingID uint) error {
	return r.db.Model(&ds.Booking{}).
		Where("id = ? AND status = ?", bookingID, "abierta").
		Update("status", "facturada").Error
}
