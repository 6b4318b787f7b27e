package reflection

import "testing"

func TestValidate(t *testing.T) {
	base := WeeklyReflection{ID: "ref1", WeekStartDate: "2025-06-02"}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid reflection rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*WeeklyReflection)
		want   error
	}{
		{"missing id", func(r *WeeklyReflection) { r.ID = "" }, ErrEmptyID},
		{"missing week", func(r *WeeklyReflection) { r.WeekStartDate = "" }, ErrEmptyWeek},
		{"malformed week", func(r *WeeklyReflection) { r.WeekStartDate = "last week" }, ErrInvalidWeek},
		{"non-monday week", func(r *WeeklyReflection) { r.WeekStartDate = "2025-06-04" }, ErrInvalidWeek},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := base
			tc.mutate(&r)
			if err := r.Validate(); err != tc.want {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}
