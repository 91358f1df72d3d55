// Package models defines the core data structures for RenoIntake.
//
// It includes the canonical intake field schema, dialogue decision types, and
// price estimate structures shared across modules.
package models

// FieldKind classifies how a field's raw value is normalized.
type FieldKind string

const (
	// FieldKindFreeText covers description-like fields reformulated into direct statements.
	FieldKindFreeText FieldKind = "free_text"
	// FieldKindLocation covers place fields emitted as "City, Country" or "Country".
	FieldKindLocation FieldKind = "location"
	// FieldKindChoice covers enumerated fields whose chosen label is preserved verbatim.
	FieldKindChoice FieldKind = "choice"
	// FieldKindCurrencyRange covers budget fields holding a money range.
	FieldKindCurrencyRange FieldKind = "currency_range"
)

// FieldSpec describes one named slot of the project intake schema.
// Fields are immutable and defined once; nothing creates or destroys them at runtime.
type FieldSpec struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	Kind  FieldKind `json:"kind"`
}

// Canonical intake field ids, in intake order.
const (
	FieldProjectCategory     = "project_category"
	FieldServiceType         = "service_type"
	FieldProjectDescription  = "project_description"
	FieldProjectLocation     = "project_location"
	FieldProjectUrgency      = "project_urgency"
	FieldBudgetRange         = "budget_range"
	FieldSpecificMaterials   = "specific_materials"
	FieldAccessibilityNeeds  = "accessibility_needs"
	FieldTimelineConstraints = "timeline_constraints"
	FieldAdditionalServices  = "additional_services"
	FieldSpecificPreferences = "specific_preferences"
	FieldPhotosUploaded      = "photos_uploaded"
)

// intakeFields is the single shared enumeration consumed by every component.
// The decision engine, normalizer, and estimator must never drift from this list.
var intakeFields = []FieldSpec{
	{ID: FieldProjectCategory, Label: "Catégorie de projet", Kind: FieldKindChoice},
	{ID: FieldServiceType, Label: "Type de prestation", Kind: FieldKindChoice},
	{ID: FieldProjectDescription, Label: "Description du projet", Kind: FieldKindFreeText},
	{ID: FieldProjectLocation, Label: "Localisation", Kind: FieldKindLocation},
	{ID: FieldProjectUrgency, Label: "Urgence", Kind: FieldKindChoice},
	{ID: FieldBudgetRange, Label: "Budget", Kind: FieldKindCurrencyRange},
	{ID: FieldSpecificMaterials, Label: "Matériaux spécifiques", Kind: FieldKindFreeText},
	{ID: FieldAccessibilityNeeds, Label: "Besoins d'accessibilité", Kind: FieldKindFreeText},
	{ID: FieldTimelineConstraints, Label: "Contraintes de calendrier", Kind: FieldKindFreeText},
	{ID: FieldAdditionalServices, Label: "Prestations complémentaires", Kind: FieldKindFreeText},
	{ID: FieldSpecificPreferences, Label: "Préférences particulières", Kind: FieldKindFreeText},
	{ID: FieldPhotosUploaded, Label: "Photos fournies", Kind: FieldKindFreeText},
}

// fieldIndex provides id lookup without scanning the slice.
var fieldIndex = func() map[string]FieldSpec {
	m := make(map[string]FieldSpec, len(intakeFields))
	for _, f := range intakeFields {
		m[f.ID] = f
	}
	return m
}()

// IntakeFields returns the canonical field specs in intake order.
func IntakeFields() []FieldSpec {
	out := make([]FieldSpec, len(intakeFields))
	copy(out, intakeFields)
	return out
}

// FieldIDs returns the canonical field ids in intake order.
func FieldIDs() []string {
	ids := make([]string, len(intakeFields))
	for i, f := range intakeFields {
		ids[i] = f.ID
	}
	return ids
}

// FieldByID looks up a field spec by its stable identifier.
func FieldByID(id string) (FieldSpec, bool) {
	f, ok := fieldIndex[id]
	return f, ok
}

// IsValidFieldID reports whether id is a member of the canonical field set.
func IsValidFieldID(id string) bool {
	_, ok := fieldIndex[id]
	return ok
}

// FirstIntakeField returns the first field in intake order, used as the
// deterministic fallback target when the decision engine degrades.
func FirstIntakeField() string {
	return intakeFields[0].ID
}
