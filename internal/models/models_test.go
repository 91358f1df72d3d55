package models

import "testing"

func TestFieldSchemaCanonicalSet(t *testing.T) {
	ids := FieldIDs()
	if len(ids) != 12 {
		t.Fatalf("expected 12 canonical fields, got %d", len(ids))
	}
	if ids[0] != FieldProjectCategory {
		t.Errorf("expected first intake field %q, got %q", FieldProjectCategory, ids[0])
	}
	if FirstIntakeField() != FieldProjectCategory {
		t.Errorf("FirstIntakeField should be %q, got %q", FieldProjectCategory, FirstIntakeField())
	}
	for _, id := range ids {
		if !IsValidFieldID(id) {
			t.Errorf("canonical id %q not recognized by IsValidFieldID", id)
		}
		field, ok := FieldByID(id)
		if !ok {
			t.Errorf("FieldByID(%q) not found", id)
			continue
		}
		if field.Label == "" {
			t.Errorf("field %q has no label", id)
		}
		if field.Kind == "" {
			t.Errorf("field %q has no kind", id)
		}
	}
	if IsValidFieldID("made_up_field") {
		t.Error("IsValidFieldID accepted an out-of-set id")
	}
}

func TestIntakeFieldsReturnsCopy(t *testing.T) {
	fields := IntakeFields()
	fields[0].ID = "mutated"
	if IntakeFields()[0].ID != FieldProjectCategory {
		t.Error("IntakeFields exposed internal slice to mutation")
	}
}

func TestDecisionValidate(t *testing.T) {
	cases := []struct {
		name    string
		d       Decision
		wantErr error
	}{
		{"valid ask_next", Decision{Action: ActionAskNext, TargetField: FieldBudgetRange, Rationale: "next unfilled"}, nil},
		{"valid without target", Decision{Action: ActionFreeTalk, Rationale: "off-script"}, nil},
		{"invalid action", Decision{Action: "escalate"}, ErrInvalidAction},
		{"invalid target field", Decision{Action: ActionAskNext, TargetField: "favorite_color"}, ErrInvalidTargetField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.d.Validate(); err != tc.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestIsValidAction(t *testing.T) {
	for _, a := range []Action{ActionAskNext, ActionClarify, ActionSuggest, ActionValidate, ActionFreeTalk} {
		if !IsValidAction(a) {
			t.Errorf("expected %q to be valid", a)
		}
	}
	if IsValidAction("restart") {
		t.Error("IsValidAction accepted an out-of-vocabulary action")
	}
}

func TestPriceEstimateNormalize(t *testing.T) {
	e := PriceEstimate{Min: 5000, Max: 2000}
	e.Normalize()
	if e.Min != 2000 || e.Max != 5000 {
		t.Errorf("expected swapped bounds {2000 5000}, got {%d %d}", e.Min, e.Max)
	}
	e2 := PriceEstimate{Min: 100, Max: 200}
	e2.Normalize()
	if e2.Min != 100 || e2.Max != 200 {
		t.Errorf("normalize mutated an already ordered range: {%d %d}", e2.Min, e2.Max)
	}
}

func TestProjectStateMissingFields(t *testing.T) {
	s := ProjectState{}
	if !s.IsEmpty() {
		t.Error("fresh state should be empty")
	}
	if got := len(s.MissingFields()); got != 12 {
		t.Errorf("expected 12 missing fields, got %d", got)
	}

	s.Set(FieldProjectCategory, "plomberie")
	s.Set(FieldBudgetRange, "entre 2000 et 5000 euros")
	missing := s.MissingFields()
	if len(missing) != 10 {
		t.Fatalf("expected 10 missing fields, got %d", len(missing))
	}
	if missing[0] != FieldServiceType {
		t.Errorf("expected next missing field %q, got %q", FieldServiceType, missing[0])
	}
	if s.Get(FieldProjectCategory) != "plomberie" {
		t.Errorf("Get returned %q", s.Get(FieldProjectCategory))
	}
}

func TestNormalizeRequestValidate(t *testing.T) {
	r := NormalizeRequest{FieldID: FieldProjectLocation, RawValue: "à paris"}
	if err := r.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := NormalizeRequest{FieldID: "unknown_field", RawValue: "x"}
	if err := bad.Validate(); err != ErrUnknownField {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
	empty := NormalizeRequest{}
	if err := empty.Validate(); err != ErrEmptyFieldID {
		t.Errorf("expected ErrEmptyFieldID, got %v", err)
	}
}
