package store

import (
	"context"
	"fmt"
	"time"

	"customer-merger/core/utils"
	"customer-merger/feature/profile/models"

	"gorm.io/gorm"
)

// ReservationsAfter returns reservation versions updated strictly after the
// given time, oldest first.
func (s *Store) ReservationsAfter(ctx context.Context, after time.Time, limit int) ([]models.Reservation, error) {
	var out []models.Reservation
	err := s.db.WithContext(ctx).
		Where("updated > ?", after).
		Order("updated ASC").Order("id ASC").Order("version ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read reservations after %s: %w", after.Format(time.RFC3339), err)
	}
	return out, nil
}

// CompanionGuests returns guests other than the booker whose reservation id
// lies in [minID, maxID].
func (s *Store) CompanionGuests(ctx context.Context, minID, maxID int64) ([]models.Guest, error) {
	var out []models.Guest
	err := s.db.WithContext(ctx).
		Where("reservation_id >= ? AND reservation_id <= ? AND guest_index > 0", minID, maxID).
		Order("reservation_id ASC").Order("guest_index ASC").Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read guests of reservations %d-%d: %w", minID, maxID, err)
	}
	return out, nil
}

// latestVersions joins reservations to the highest version of each id the
// subquery selects.
func (s *Store) latestVersions(ctx context.Context, latest *gorm.DB) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("reservations").
		Select("reservations.*").
		Joins("JOIN (?) latest ON latest.id = reservations.id AND latest.version = reservations.version", latest)
}

// ReservationsByIDs returns the latest version of each reservation.
func (s *Store) ReservationsByIDs(ctx context.Context, ids []int64) ([]models.Reservation, error) {
	var out []models.Reservation
	for _, chunk := range utils.Chunk(ids, idChunk) {
		latest := s.db.Model(&models.Reservation{}).
			Select("id, MAX(version) AS version").
			Where("id IN ?", chunk).
			Group("id")

		var page []models.Reservation
		if err := s.latestVersions(ctx, latest).Order("reservations.id ASC").Find(&page).Error; err != nil {
			return nil, fmt.Errorf("failed to read reservations by id: %w", err)
		}
		out = append(out, page...)
	}
	return out, nil
}

// ReservationPage returns up to limit reservations with id greater than
// afterID, one latest version each, ordered by id.
func (s *Store) ReservationPage(ctx context.Context, afterID int64, limit int) ([]models.Reservation, error) {
	latest := s.db.Model(&models.Reservation{}).
		Select("id, MAX(version) AS version").
		Where("id > ?", afterID).
		Group("id").
		Order("id ASC").
		Limit(limit)

	var out []models.Reservation
	if err := s.latestVersions(ctx, latest).Order("reservations.id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to read reservation page after %d: %w", afterID, err)
	}
	return out, nil
}

// GuestsByIDs returns the guests with the given ids.
func (s *Store) GuestsByIDs(ctx context.Context, ids []int64) ([]models.Guest, error) {
	var out []models.Guest
	for _, chunk := range utils.Chunk(ids, idChunk) {
		var page []models.Guest
		if err := s.db.WithContext(ctx).Where("id IN ?", chunk).Order("id ASC").Find(&page).Error; err != nil {
			return nil, fmt.Errorf("failed to read guests by id: %w", err)
		}
		out = append(out, page...)
	}
	return out, nil
}

// GuestsForReservations returns every guest of the given reservations,
// ordered by reservation and guest index.
func (s *Store) GuestsForReservations(ctx context.Context, reservationIDs []int64) ([]models.Guest, error) {
	var out []models.Guest
	for _, chunk := range utils.Chunk(reservationIDs, idChunk) {
		var page []models.Guest
		err := s.db.WithContext(ctx).
			Where("reservation_id IN ?", chunk).
			Order("reservation_id ASC").Order("guest_index ASC").Order("id ASC").
			Find(&page).Error
		if err != nil {
			return nil, fmt.Errorf("failed to read guests of reservations: %w", err)
		}
		out = append(out, page...)
	}
	return out, nil
}
