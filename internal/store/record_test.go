package store_test

import (
	"testing"
	"time"

	"nutriapi/internal/store"
)

func TestRecord_GetAsString(t *testing.T) {
	tests := []struct {
		name         string
		record       store.Record
		col          string
		defaultValue string
		want         string
	}{
		{
			name:         "string value",
			record:       store.Record{Values: map[string]interface{}{"name": "Green Tea"}},
			col:          "name",
			defaultValue: "default",
			want:         "Green Tea",
		},
		{
			name:         "int64 value",
			record:       store.Record{Values: map[string]interface{}{"id": int64(7)}},
			col:          "id",
			defaultValue: "default",
			want:         "7",
		},
		{
			name:         "float value",
			record:       store.Record{Values: map[string]interface{}{"price": 9.99}},
			col:          "price",
			defaultValue: "default",
			want:         "9.99",
		},
		{
			name:         "bool value",
			record:       store.Record{Values: map[string]interface{}{"is_active": true}},
			col:          "is_active",
			defaultValue: "default",
			want:         "true",
		},
		{
			name:         "missing value returns default",
			record:       store.Record{Values: map[string]interface{}{}},
			col:          "name",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.GetAsString(tt.col, tt.defaultValue); got != tt.want {
				t.Errorf("GetAsString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsInt64(t *testing.T) {
	tests := []struct {
		name         string
		record       store.Record
		col          string
		defaultValue int64
		want         int64
	}{
		{
			name:         "int64 value",
			record:       store.Record{Values: map[string]interface{}{"id": int64(7)}},
			col:          "id",
			defaultValue: 0,
			want:         7,
		},
		{
			name:         "numeric string",
			record:       store.Record{Values: map[string]interface{}{"id": "7"}},
			col:          "id",
			defaultValue: 0,
			want:         7,
		},
		{
			name:         "float truncates",
			record:       store.Record{Values: map[string]interface{}{"quantity": 2.9}},
			col:          "quantity",
			defaultValue: 0,
			want:         2,
		},
		{
			name:         "non-numeric string returns default",
			record:       store.Record{Values: map[string]interface{}{"id": "abc"}},
			col:          "id",
			defaultValue: -1,
			want:         -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.GetAsInt64(tt.col, tt.defaultValue); got != tt.want {
				t.Errorf("GetAsInt64() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRecord_ID(t *testing.T) {
	tests := []struct {
		name   string
		record store.Record
		want   string
	}{
		{name: "numeric id", record: store.Record{Values: map[string]interface{}{"id": int64(7)}}, want: "7"},
		{name: "textual id", record: store.Record{Values: map[string]interface{}{"id": "7"}}, want: "7"},
		{name: "missing id", record: store.Record{Values: map[string]interface{}{}}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.record.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecord_GetAsTime(t *testing.T) {
	def := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	record := store.Record{Values: map[string]interface{}{
		"created_at":       "2024-06-01T10:30:00Z",
		"appointment_date": "2024-06-02",
		"garbage":          "not a date",
	}}

	if got := record.GetAsTime("created_at", def); got.Hour() != 10 || got.Year() != 2024 {
		t.Errorf("GetAsTime(created_at) = %v", got)
	}
	if got := record.GetAsTime("appointment_date", def); got.Day() != 2 {
		t.Errorf("GetAsTime(appointment_date) = %v", got)
	}
	if got := record.GetAsTime("garbage", def); !got.Equal(def) {
		t.Errorf("GetAsTime(garbage) = %v, want default", got)
	}
	if got := record.GetAsTime("missing", def); !got.Equal(def) {
		t.Errorf("GetAsTime(missing) = %v, want default", got)
	}
}

func TestRecord_Clone(t *testing.T) {
	original := store.Record{Values: map[string]interface{}{"id": int64(1), "name": "Tea"}}
	clone := original.Clone()
	clone.Set("name", "Coffee")

	if original.GetAsString("name", "") != "Tea" {
		t.Errorf("mutating a clone changed the original: %v", original.Values)
	}
}

func TestFilter(t *testing.T) {
	records := []store.Record{
		{Values: map[string]interface{}{"id": int64(1), "status": "pending", "user_id": int64(1)}},
		{Values: map[string]interface{}{"id": int64(2), "status": "confirmed", "user_id": int64(1)}},
		{Values: map[string]interface{}{"id": int64(3), "status": "pending", "user_id": int64(2)}},
	}

	tests := []struct {
		name    string
		query   store.Query
		wantIDs []int64
	}{
		{
			name:    "single equality",
			query:   store.Query{Conditions: []store.Condition{{Column: "status", Value: "pending"}}},
			wantIDs: []int64{1, 3},
		},
		{
			name: "and of two conditions",
			query: store.Query{Conditions: []store.Condition{
				{Column: "status", Value: "pending"},
				{Column: "user_id", Value: int64(1)},
			}},
			wantIDs: []int64{1},
		},
		{
			name:    "negated condition",
			query:   store.Query{Conditions: []store.Condition{{Column: "status", Value: "pending", Negate: true}}},
			wantIDs: []int64{2},
		},
		{
			name:    "numeric value compares across types",
			query:   store.Query{Conditions: []store.Condition{{Column: "user_id", Value: 1}}},
			wantIDs: []int64{1, 2},
		},
		{
			name:    "limit and offset",
			query:   store.Query{Limit: 1, Offset: 1},
			wantIDs: []int64{2},
		},
		{
			name:    "offset beyond results",
			query:   store.Query{Offset: 5},
			wantIDs: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.Filter(records, tt.query)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Filter() returned %d records, want %d", len(got), len(tt.wantIDs))
			}
			for i, want := range tt.wantIDs {
				if id := got[i].GetAsInt64("id", 0); id != want {
					t.Errorf("Filter()[%d] id = %d, want %d", i, id, want)
				}
			}
		})
	}
}
