// Package intake provides outbound question and suggestion texts per field.
package intake

import (
	"fmt"

	"github.com/RenoMatch/RenoIntake/internal/models"
)

// fieldQuestions holds the outbound question asked to fill each field.
var fieldQuestions = map[string]string{
	models.FieldProjectCategory:     "Quel type de projet souhaitez-vous réaliser (plomberie, électricité, peinture, carrelage...) ?",
	models.FieldServiceType:         "S'agit-il d'une réparation, d'une installation neuve ou d'une rénovation complète ?",
	models.FieldProjectDescription:  "Pouvez-vous décrire votre projet en quelques phrases ?",
	models.FieldProjectLocation:     "Où se situe le chantier (ville) ?",
	models.FieldProjectUrgency:      "Quel est le degré d'urgence de vos travaux ?",
	models.FieldBudgetRange:         "Quel budget envisagez-vous pour ces travaux ?",
	models.FieldSpecificMaterials:   "Avez-vous des matériaux spécifiques en tête ?",
	models.FieldAccessibilityNeeds:  "Y a-t-il des contraintes d'accès ou des besoins d'accessibilité à prévoir ?",
	models.FieldTimelineConstraints: "Avez-vous des contraintes de calendrier pour la réalisation ?",
	models.FieldAdditionalServices:  "Souhaitez-vous des prestations complémentaires (évacuation des gravats, finitions...) ?",
	models.FieldSpecificPreferences: "Avez-vous des préférences particulières pour ce projet ?",
	models.FieldPhotosUploaded:      "Pouvez-vous ajouter des photos de l'existant pour aider les artisans ?",
}

// fieldSuggestions holds canned suggestion lists, used when the suggestion
// generation call fails. Only choice-like fields carry them.
var fieldSuggestions = map[string][]string{
	models.FieldProjectCategory: {"Plomberie", "Électricité", "Peinture", "Carrelage", "Salle de bain", "Cuisine"},
	models.FieldServiceType:     {"Réparation", "Installation neuve", "Rénovation complète"},
	models.FieldProjectUrgency:  {"Urgent (sous 48h)", "Sous deux semaines", "Dans les prochains mois"},
}

// questionForField returns the outbound question for a field, with a generic
// label-based fallback for safety.
func questionForField(fieldID string) string {
	if q, ok := fieldQuestions[fieldID]; ok {
		return q
	}
	if f, ok := models.FieldByID(fieldID); ok {
		return fmt.Sprintf("Pouvez-vous préciser : %s ?", f.Label)
	}
	return "Pouvez-vous m'en dire plus sur votre projet ?"
}

// cannedSuggestionsForField returns the fallback suggestion list for a field.
func cannedSuggestionsForField(fieldID string) []string {
	return fieldSuggestions[fieldID]
}
