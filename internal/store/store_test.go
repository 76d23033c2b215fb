package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nutriapi/internal/store"
	"nutriapi/internal/store/storetest"
)

func TestStore_InsertRoundTrip(t *testing.T) {
	fake := storetest.NewSeeded()
	s := store.New(fake)
	ctx := context.Background()

	id, inserted, err := s.Insert(ctx, store.SheetProducts, map[string]interface{}{
		"name":      "Green Tea",
		"price":     9.99,
		"category":  "drinks",
		"is_active": true,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id != 1 {
		t.Errorf("Insert() id = %d, want 1", id)
	}

	found, err := s.FindByID(ctx, store.SheetProducts, "1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got := found.GetAsString("name", ""); got != "Green Tea" {
		t.Errorf("name = %q, want %q", got, "Green Tea")
	}
	if got := found.GetAsFloat64("price", 0); got != 9.99 {
		t.Errorf("price = %v, want 9.99", got)
	}
	if got := found.GetAsBool("is_active", false); !got {
		t.Errorf("is_active = false, want true")
	}
	if inserted.GetAsInt64("id", 0) != 1 {
		t.Errorf("inserted record id = %v, want 1", inserted.Values["id"])
	}
}

func TestStore_InsertGeneratedIDs(t *testing.T) {
	tests := []struct {
		name   string
		ids    []int64
		wantID int64
	}{
		{name: "empty sheet assigns 1", ids: nil, wantID: 1},
		{name: "max plus one, not count plus one", ids: []int64{1, 3, 5}, wantID: 6},
		{name: "gaps are never refilled", ids: []int64{2, 7}, wantID: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := storetest.NewSeeded()
			for _, id := range tt.ids {
				fake.Seed(store.SheetNutritionPlans, []interface{}{id, "plan", "", "10", "30", "TRUE", ""})
			}

			s := store.New(fake)
			id, _, err := s.Insert(context.Background(), store.SheetNutritionPlans, map[string]interface{}{
				"name": "new plan",
			})
			if err != nil {
				t.Fatalf("Insert() error = %v", err)
			}
			if id != tt.wantID {
				t.Errorf("Insert() id = %d, want %d", id, tt.wantID)
			}
		})
	}
}

func TestStore_InsertScenario(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetProducts, []interface{}{"1", "Tea", "desc", "9.99", "", "drinks", "", "TRUE", ""})

	s := store.New(fake)
	ctx := context.Background()

	id, _, err := s.Insert(ctx, store.SheetProducts, map[string]interface{}{
		"name":  "Coffee",
		"price": 5,
	})
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id != 2 {
		t.Errorf("Insert() id = %d, want 2", id)
	}

	records, err := s.ListAll(ctx, store.SheetProducts)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListAll() returned %d records, want 2", len(records))
	}
	coffee := records[1]
	if coffee.GetAsInt64("id", 0) != 2 || coffee.GetAsString("name", "") != "Coffee" || coffee.GetAsFloat64("price", 0) != 5 {
		t.Errorf("ListAll()[1] = %v, want id=2 name=Coffee price=5", coffee.Values)
	}
}

func TestStore_SchemaErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]interface{}
	}{
		{name: "no header row", rows: nil},
		{name: "header without id column", rows: [][]interface{}{{"name", "price"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := storetest.New()
			fake.Seed("broken", tt.rows...)

			s := store.New(fake)
			_, _, err := s.Insert(context.Background(), "broken", map[string]interface{}{"name": "x"})
			if !errors.Is(err, store.ErrSchema) {
				t.Errorf("Insert() error = %v, want ErrSchema", err)
			}
		})
	}
}

func TestStore_ListAllHeaderOnly(t *testing.T) {
	fake := storetest.NewSeeded()
	s := store.New(fake)

	records, err := s.ListAll(context.Background(), store.SheetUsers)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("ListAll() returned %d records, want 0", len(records))
	}
}

func TestStore_FindByID_StringNormalized(t *testing.T) {
	fake := storetest.NewSeeded()
	// Numeric and textual ids identify the same record.
	fake.Seed(store.SheetProducts, []interface{}{7, "Tea", "", "9.99", "", "", "", "TRUE", ""})

	s := store.New(fake)
	record, err := s.FindByID(context.Background(), store.SheetProducts, "7")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if record.GetAsString("name", "") != "Tea" {
		t.Errorf("FindByID() name = %q, want Tea", record.GetAsString("name", ""))
	}
}

func TestStore_UpdatePartialIsolation(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetProducts, []interface{}{"1", "Tea", "green tea", "9.99", "", "drinks", "", "TRUE", "2024-01-01"})

	s := store.New(fake)
	ctx := context.Background()

	if _, err := s.UpdateByID(ctx, store.SheetProducts, "1", map[string]interface{}{
		"price": 12.5,
	}); err != nil {
		t.Fatalf("UpdateByID() error = %v", err)
	}

	record, err := s.FindByID(ctx, store.SheetProducts, "1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got := record.GetAsFloat64("price", 0); got != 12.5 {
		t.Errorf("price = %v, want 12.5", got)
	}
	// All other fields retain their prior values.
	if got := record.GetAsString("name", ""); got != "Tea" {
		t.Errorf("name = %q, want Tea", got)
	}
	if got := record.GetAsString("description", ""); got != "green tea" {
		t.Errorf("description = %q, want %q", got, "green tea")
	}
	if got := record.GetAsString("created_at", ""); got != "2024-01-01" {
		t.Errorf("created_at = %q, want 2024-01-01", got)
	}
}

func TestStore_UpdateNeverOverwritesID(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetProducts, []interface{}{"1", "Tea", "", "9.99", "", "", "", "TRUE", ""})

	s := store.New(fake)
	ctx := context.Background()

	if _, err := s.UpdateByID(ctx, store.SheetProducts, "1", map[string]interface{}{
		"id":   99,
		"name": "Oolong",
	}); err != nil {
		t.Fatalf("UpdateByID() error = %v", err)
	}

	record, err := s.FindByID(ctx, store.SheetProducts, "1")
	if err != nil {
		t.Fatalf("FindByID() after update error = %v", err)
	}
	if record.GetAsString("name", "") != "Oolong" {
		t.Errorf("name = %q, want Oolong", record.GetAsString("name", ""))
	}
	if _, err := s.FindByID(ctx, store.SheetProducts, "99"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("record identity drifted to id 99")
	}
}

func TestStore_UpdateMissingRecord(t *testing.T) {
	fake := storetest.NewSeeded()
	s := store.New(fake)

	_, err := s.UpdateByID(context.Background(), store.SheetUsers, "42", map[string]interface{}{"full_name": "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateByID() error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteThenFind(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetProducts,
		[]interface{}{"1", "Tea", "", "9.99", "", "", "", "TRUE", ""},
		[]interface{}{"2", "Coffee", "", "5", "", "", "", "TRUE", ""},
	)

	s := store.New(fake)
	ctx := context.Background()

	if err := s.DeleteByID(ctx, store.SheetProducts, "1"); err != nil {
		t.Fatalf("DeleteByID() error = %v", err)
	}

	if _, err := s.FindByID(ctx, store.SheetProducts, "1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
	}

	// Later rows shift up but remain addressable by id.
	record, err := s.FindByID(ctx, store.SheetProducts, "2")
	if err != nil {
		t.Fatalf("FindByID(2) error = %v", err)
	}
	if record.GetAsString("name", "") != "Coffee" {
		t.Errorf("name = %q, want Coffee", record.GetAsString("name", ""))
	}

	if err := s.DeleteByID(ctx, store.SheetProducts, "1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second DeleteByID() error = %v, want ErrNotFound", err)
	}
}

func TestStore_FindByField(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Seed(store.SheetUsers, []interface{}{"1", "alice", "alice@example.com", "hash", "Alice", "customer", ""})

	s := store.New(fake)
	ctx := context.Background()

	record, err := s.FindByField(ctx, store.SheetUsers, "email", "alice@example.com")
	if err != nil {
		t.Fatalf("FindByField() error = %v", err)
	}
	if record.GetAsString("username", "") != "alice" {
		t.Errorf("username = %q, want alice", record.GetAsString("username", ""))
	}

	if _, err := s.FindByField(ctx, store.SheetUsers, "email", "bob@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("FindByField() error = %v, want ErrNotFound", err)
	}
}

func TestStore_StorageUnavailable(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.Err = store.ErrStorageUnavailable

	s := store.New(fake)
	ctx := context.Background()

	if _, err := s.ListAll(ctx, store.SheetProducts); !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("ListAll() error = %v, want ErrStorageUnavailable", err)
	}
	if _, _, err := s.Insert(ctx, store.SheetProducts, nil); !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("Insert() error = %v, want ErrStorageUnavailable", err)
	}
	if err := s.DeleteByID(ctx, store.SheetProducts, "1"); !errors.Is(err, store.ErrStorageUnavailable) {
		t.Errorf("DeleteByID() error = %v, want ErrStorageUnavailable", err)
	}
}

// TestStore_ConcurrentInsertRace demonstrates the accepted id generation
// race: two inserts whose reads interleave before either append completes
// both compute the same next id. The medium offers no atomic counter and
// the store does not serialize writers.
func TestStore_ConcurrentInsertRace(t *testing.T) {
	fake := storetest.NewSeeded()
	fake.ReadDelay = 50 * time.Millisecond

	s := store.New(fake)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]int64, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, _, err := s.Insert(ctx, store.SheetOrders, map[string]interface{}{
				"user_id": 1,
				"status":  "pending",
			})
			if err != nil {
				t.Errorf("Insert() error = %v", err)
				return
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	if ids[0] != 1 || ids[1] != 1 {
		t.Errorf("concurrent inserts allocated ids %v, expected both to race to id 1", ids)
	}

	rows := fake.Rows(store.SheetOrders)
	if len(rows) != 3 { // header + two duplicate-id rows
		t.Errorf("sheet has %d rows, want 3", len(rows))
	}
}
