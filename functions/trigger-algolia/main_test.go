package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/internal/ddb"
)

type mockIndexer struct {
	saved   []unicatalog.Detail
	deleted []string
	err     error
}

func (m *mockIndexer) SaveUniversity(_ context.Context, _ string, detail *unicatalog.Detail) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, *detail)
	return nil
}

func (m *mockIndexer) DeleteUniversity(_ context.Context, _ string, code string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, code)
	return nil
}

func image(pk, sk, code string) map[string]events.DynamoDBAttributeValue {
	object := map[string]events.DynamoDBAttributeValue{
		"name": events.NewStringAttribute("Some University"),
	}
	if code != "" {
		object["code"] = events.NewStringAttribute(code)
	}
	return map[string]events.DynamoDBAttributeValue{
		"pk":     events.NewStringAttribute(pk),
		"sk":     events.NewStringAttribute(sk),
		"object": events.NewMapAttribute(object),
	}
}

func TestHandleDynamoDBEvent(t *testing.T) {
	tests := []struct {
		name        string
		record      events.DynamoDBEventRecord
		wantSaved   []string
		wantDeleted []string
	}{
		{
			name: "insert saves",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeInsert),
				Change:    events.DynamoDBStreamRecord{NewImage: image("id1", ddb.UniversityKind, "IUH")},
			},
			wantSaved: []string{"IUH"},
		},
		{
			name: "modify saves",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeModify),
				Change:    events.DynamoDBStreamRecord{NewImage: image("id1", ddb.UniversityKind, "HCMUT")},
			},
			wantSaved: []string{"HCMUT"},
		},
		{
			name: "remove deletes by code",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeRemove),
				Change:    events.DynamoDBStreamRecord{OldImage: image("id1", ddb.UniversityKind, "UEH")},
			},
			wantDeleted: []string{"UEH"},
		},
		{
			name: "remove without old image skipped",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeRemove),
				Change: events.DynamoDBStreamRecord{Keys: map[string]events.DynamoDBAttributeValue{
					"pk": events.NewStringAttribute("id1"),
					"sk": events.NewStringAttribute(ddb.UniversityKind),
				}},
			},
		},
		{
			name: "other kind skipped",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeInsert),
				Change:    events.DynamoDBStreamRecord{NewImage: image("id1", "cars", "IUH")},
			},
		},
		{
			name: "missing code skipped",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeInsert),
				Change:    events.DynamoDBStreamRecord{NewImage: image("id1", ddb.UniversityKind, "")},
			},
		},
		{
			name: "missing new image skipped",
			record: events.DynamoDBEventRecord{
				EventName: string(ddb.OperationTypeInsert),
			},
		},
		{
			name: "unknown event ignored",
			record: events.DynamoDBEventRecord{
				EventName: "TTL",
				Change:    events.DynamoDBStreamRecord{NewImage: image("id1", ddb.UniversityKind, "IUH")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indexer := &mockIndexer{}
			h := NewHandler("universities", "universities_dev", indexer)

			err := h.HandleDynamoDBEvent(context.Background(), events.DynamoDBEvent{
				Records: []events.DynamoDBEventRecord{tt.record},
			})
			if err != nil {
				t.Fatalf("HandleDynamoDBEvent() error = %v", err)
			}

			if len(indexer.saved) != len(tt.wantSaved) {
				t.Fatalf("saved %d, want %d", len(indexer.saved), len(tt.wantSaved))
			}
			for i, code := range tt.wantSaved {
				if indexer.saved[i].Code != code {
					t.Errorf("saved[%d] = %q, want %q", i, indexer.saved[i].Code, code)
				}
				if indexer.saved[i].ID != "id1" {
					t.Errorf("saved[%d].ID = %q, want id1", i, indexer.saved[i].ID)
				}
			}
			if len(indexer.deleted) != len(tt.wantDeleted) {
				t.Fatalf("deleted %v, want %v", indexer.deleted, tt.wantDeleted)
			}
			for i, code := range tt.wantDeleted {
				if indexer.deleted[i] != code {
					t.Errorf("deleted[%d] = %q, want %q", i, indexer.deleted[i], code)
				}
			}
		})
	}
}

func TestHandleDynamoDBEvent_IndexerErrorFailsBatch(t *testing.T) {
	wantErr := errors.New("algolia down")
	indexer := &mockIndexer{err: wantErr}
	h := NewHandler("universities", "universities_dev", indexer)

	err := h.HandleDynamoDBEvent(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{{
			EventName: string(ddb.OperationTypeInsert),
			Change:    events.DynamoDBStreamRecord{NewImage: image("id1", ddb.UniversityKind, "IUH")},
		}},
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("HandleDynamoDBEvent() error = %v, want %v", err, wantErr)
	}
}
