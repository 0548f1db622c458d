package analytics

import "testing"

func TestProductivity(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		out  float64
		want float64
	}{
		{"full day inside", 28800, 0, 100},
		{"eighty percent", 480, 120, 80},
		{"quarter", 1, 3, 25},
		{"repeating fraction rounds", 1, 2, 33.33},
		{"two thirds rounds up", 2, 1, 66.67},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Productivity(tt.in, tt.out)
			if got == nil {
				t.Fatalf("Productivity(%v, %v) = nil, want %v", tt.in, tt.out, tt.want)
			}
			if *got != tt.want {
				t.Errorf("Productivity(%v, %v) = %v, want %v", tt.in, tt.out, *got, tt.want)
			}
		})
	}
}

// 无任何在场时间时比率无定义
func TestProductivityUndefined(t *testing.T) {
	if got := Productivity(0, 0); got != nil {
		t.Errorf("Productivity(0, 0) = %v, want nil", *got)
	}
}
