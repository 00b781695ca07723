package models

// CategoryScore summarises how consistently the habits of one life area
// were completed over a scoring period. When HasHabits is false the zero
// CompletionRate means "not applicable", not 0%.
type CategoryScore struct {
	Category       Category `json:"category"`
	CompletionRate int      `json:"completion_rate"`
	TotalHabits    int      `json:"total_habits"`
	CompletedCount int      `json:"completed_count"`
	ExpectedCount  int      `json:"expected_count"`
	HasHabits      bool     `json:"has_habits"`
}
