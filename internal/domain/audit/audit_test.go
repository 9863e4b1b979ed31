package audit

import (
	"reflect"
	"testing"
)

func TestBuildQueryFilters(t *testing.T) {
	query, args := buildQuery("SELECT id", "shop-1", Filter{Action: ActionOrderCreate, EntityID: "o1"})
	want := "SELECT id FROM audit_events WHERE shop_id = $1 AND action = $2 AND entity_id = $3"
	if query != want {
		t.Fatalf("unexpected query %q", query)
	}
	if !reflect.DeepEqual(args, []any{"shop-1", ActionOrderCreate, "o1"}) {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestMarshalOptionalNil(t *testing.T) {
	payload, err := marshalOptional(nil)
	if err != nil || payload != nil {
		t.Fatalf("expected nil payload, got %s, %v", payload, err)
	}
	payload, err = marshalOptional(map[string]int{"qty": 2})
	if err != nil || string(payload) != `{"qty":2}` {
		t.Fatalf("unexpected payload %s, %v", payload, err)
	}
}
