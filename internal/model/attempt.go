package model

// SelectAnswerRequest records a choice on the current question page.
// ChoiceIndex is a pointer so index 0 survives required-field validation.
type SelectAnswerRequest struct {
	ChoiceIndex *int `json:"choice_index" binding:"required,min=0"`
}
