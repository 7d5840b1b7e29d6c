package store

import (
	"context"
	"fmt"
	"time"

	"customer-merger/core/reconcile"
	"customer-merger/core/utils"
	"customer-merger/feature/profile/models"

	"gorm.io/gorm"
)

// insertBatchSize is the number of rows per INSERT statement.
const insertBatchSize = 100

// columns maps searchable fields to customer columns.
var columns = map[models.MatchField]string{
	models.FieldEmail: "email",
	models.FieldPhone: "phone_number",
	models.FieldName:  "full_name",
}

// latestPerID converts rows to profiles, keeping the first row of each id.
// Callers order rows newest first.
func latestPerID(rows []models.CustomerRow) []*models.Customer {
	seen := make(map[string]bool, len(rows))
	out := make([]*models.Customer, 0, len(rows))
	for _, row := range rows {
		if seen[row.ID] {
			continue
		}
		seen[row.ID] = true
		out = append(out, row.Customer())
	}
	return out
}

func (s *Store) findCustomers(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*models.Customer, error) {
	var rows []models.CustomerRow
	db := scope(s.db.WithContext(ctx).Model(&models.CustomerRow{}))
	if err := db.Order("updated DESC").Order("row_id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return latestPerID(rows), nil
}

// CustomersBySSN returns profiles with exactly this ssn.
func (s *Store) CustomersBySSN(ctx context.Context, ssn string) ([]*models.Customer, error) {
	out, err := s.findCustomers(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("ssn = ?", ssn)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find customers by ssn: %w", err)
	}
	return out, nil
}

// CustomersNear returns profiles whose field lies within edit distance k of value.
func (s *Store) CustomersNear(ctx context.Context, field models.MatchField, value string, k int) ([]*models.Customer, error) {
	column, ok := columns[field]
	if !ok {
		return nil, fmt.Errorf("unsupported match field %q", field)
	}
	cond := fmt.Sprintf("%s IS NOT NULL AND %s <> '' AND %s(%s, ?) <= ?", column, column, s.distance, column)

	out, err := s.findCustomers(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where(cond, value, k)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find customers near %s: %w", field, err)
	}
	return out, nil
}

// CustomersByIDs returns the newest stored version of each id.
func (s *Store) CustomersByIDs(ctx context.Context, ids []string) ([]*models.Customer, error) {
	var out []*models.Customer
	for _, chunk := range utils.Chunk(ids, idChunk) {
		page, err := s.findCustomers(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Where("id IN ?", chunk)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read customers by id: %w", err)
		}
		out = append(out, page...)
	}
	return out, nil
}

// Customer returns one profile, or nil when it does not exist.
func (s *Store) Customer(ctx context.Context, id string) (*models.Customer, error) {
	found, err := s.CustomersByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// AllCustomers reads the whole table in pages, newest version per id.
func (s *Store) AllCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.customersWhere(ctx, nil)
}

// CustomersUpdatedBefore returns profiles last updated before the given time.
func (s *Store) CustomersUpdatedBefore(ctx context.Context, before time.Time) ([]*models.Customer, error) {
	return s.customersWhere(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("updated < ?", before)
	})
}

func (s *Store) customersWhere(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]*models.Customer, error) {
	var out []*models.Customer
	index := make(map[string]int)
	var batch []models.CustomerRow

	db := s.db.WithContext(ctx).Model(&models.CustomerRow{})
	if scope != nil {
		db = scope(db)
	}
	// Batches walk row_id upwards, so a later row of an id replaces the earlier one.
	err := db.FindInBatches(&batch, s.pageSize, func(tx *gorm.DB, _ int) error {
		for _, row := range batch {
			if i, ok := index[row.ID]; ok {
				out[i] = row.Customer()
				continue
			}
			index[row.ID] = len(out)
			out = append(out, row.Customer())
		}
		return nil
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read customers: %w", err)
	}
	return out, nil
}

// CustomerVersions lists stored rows updated before the given time, newest first.
func (s *Store) CustomerVersions(ctx context.Context, before time.Time) ([]models.StoredVersion, error) {
	var out []models.StoredVersion
	err := s.db.WithContext(ctx).
		Model(&models.CustomerRow{}).
		Select("row_id, id, updated").
		Where("updated < ?", before).
		Order("updated DESC").Order("row_id DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list customer versions: %w", err)
	}
	return out, nil
}

// DeleteCustomerRows deletes individual stored rows.
func (s *Store) DeleteCustomerRows(ctx context.Context, rowIDs []uint64) error {
	for _, chunk := range utils.Chunk(rowIDs, idChunk) {
		if err := s.db.WithContext(ctx).Where("row_id IN ?", chunk).Delete(&models.CustomerRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete customer rows: %w", err)
		}
	}
	return nil
}

// DeleteCustomers deletes every stored row of the given ids.
func (s *Store) DeleteCustomers(ctx context.Context, ids []string) error {
	for _, chunk := range utils.Chunk(ids, idChunk) {
		if err := s.db.WithContext(ctx).Where("id IN ?", chunk).Delete(&models.CustomerRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete customers: %w", err)
		}
	}
	return nil
}

// InsertCustomers stores profiles as new rows.
func (s *Store) InsertCustomers(ctx context.Context, customers []*models.Customer) error {
	if len(customers) == 0 {
		return nil
	}
	rows := make([]models.CustomerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, models.NewCustomerRow(c))
	}
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to insert customers: %w", err)
	}
	return nil
}

// Mutator adapts the store to the batch apply engine.
func (s *Store) Mutator() *CustomerMutator {
	return &CustomerMutator{store: s}
}

// ReplaceCustomers deletes every row of deleteIDs and inserts customers in
// one transaction. Failures come back as *reconcile.StepError naming the step;
// either way nothing is written.
func (s *Store) ReplaceCustomers(ctx context.Context, deleteIDs []string, customers []*models.Customer) error {
	plan := &reconcile.Plan[*models.Customer]{Deletes: deleteIDs, Inserts: customers}
	_, err := reconcile.ApplyPlan(ctx, s.Mutator(), plan, reconcile.Options{
		ChunkSize:   insertBatchSize,
		Concurrency: 1,
		Confirmed:   true,
	})
	return err
}

// withDB returns a copy of the store bound to db.
func (s *Store) withDB(db *gorm.DB) *Store {
	c := *s
	c.db = db
	return &c
}

// CustomerMutator deletes and inserts customers for reconcile.ApplyPlan.
type CustomerMutator struct {
	store *Store
}

// Transaction runs fn against a mutator bound to one database transaction.
func (m *CustomerMutator) Transaction(ctx context.Context, fn func(tx reconcile.Mutator[*models.Customer]) error) error {
	return m.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CustomerMutator{store: m.store.withDB(tx)})
	})
}

// DeleteBatch deletes customers by id.
func (m *CustomerMutator) DeleteBatch(ctx context.Context, ids []string) error {
	return m.store.DeleteCustomers(ctx, ids)
}

// InsertBatch inserts customers.
func (m *CustomerMutator) InsertBatch(ctx context.Context, rows []*models.Customer) error {
	return m.store.InsertCustomers(ctx, rows)
}
