package habit

type CreateHabitRequest struct {
	Name        string    `json:"name" validate:"required,max=100"`
	Description string    `json:"description,omitempty" validate:"max=500"`
	Frequency   Frequency `json:"frequency,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
}

// Normalize applies form defaults before validation.
func (r *CreateHabitRequest) Normalize() {
	if r.Frequency == "" {
		r.Frequency = FrequencyDaily
	}
}
