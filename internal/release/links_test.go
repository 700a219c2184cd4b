package release

import (
	"errors"
	"reflect"
	"testing"

	"go_releasehub/internal/model"
)

func TestDedupeLinks(t *testing.T) {
	e1 := model.EntityLink{ID: "e1", LinkType: model.LinkTypeEntry}
	e2 := model.EntityLink{ID: "e2", LinkType: model.LinkTypeEntry}
	a1 := model.EntityLink{ID: "e1", LinkType: model.LinkTypeAsset}

	got := DedupeLinks([]model.EntityLink{e1, e2, e1, a1, e2})
	want := []model.EntityLink{e1, e2, a1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DedupeLinks() = %v, want %v", got, want)
	}

	if got := DedupeLinks(nil); len(got) != 0 {
		t.Errorf("DedupeLinks(nil) = %v, want empty", got)
	}
}

func TestValidateLinks(t *testing.T) {
	tests := []struct {
		name    string
		links   []model.EntityLink
		wantErr bool
	}{
		{"valid", []model.EntityLink{{ID: "e1", LinkType: model.LinkTypeEntry}, {ID: "a1", LinkType: model.LinkTypeAsset}}, false},
		{"empty list", nil, false},
		{"missing id", []model.EntityLink{{ID: " ", LinkType: model.LinkTypeEntry}}, true},
		{"bad type", []model.EntityLink{{ID: "x", LinkType: "ContentType"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLinks(tt.links)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateLinks() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidParams) {
				t.Errorf("Expected ErrInvalidParams, got %v", err)
			}
		})
	}
}

func TestRemoveLinks(t *testing.T) {
	e1 := model.EntityLink{ID: "e1", LinkType: model.LinkTypeEntry}
	e2 := model.EntityLink{ID: "e2", LinkType: model.LinkTypeEntry}
	got := removeLinks([]model.EntityLink{e1, e2}, []model.EntityLink{e1})
	if !reflect.DeepEqual(got, []model.EntityLink{e2}) {
		t.Errorf("removeLinks() = %v", got)
	}
}
