package model

import (
	"testing"
)

func TestDecodeDifficultyPoints(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		want       DifficultyPoints
		wantLegacy bool
		wantErr    bool
	}{
		{name: "object", raw: `{"easy":2,"intermediate":3,"advanced":5}`, want: DifficultyPoints{2, 3, 5}},
		{name: "legacy scalar", raw: `3`, want: DifficultyPoints{3, 4, 5}, wantLegacy: true},
		{name: "legacy float", raw: `2.0`, want: DifficultyPoints{2, 3, 4}, wantLegacy: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "empty", raw: ``, wantErr: true},
		{name: "garbage", raw: `"abc"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, legacy, err := DecodeDifficultyPoints(PointsTable(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("points = %+v, want %+v", got, tt.want)
			}
			if legacy != tt.wantLegacy {
				t.Errorf("legacy = %v, want %v", legacy, tt.wantLegacy)
			}
		})
	}
}

func TestPointsRates_RateFor(t *testing.T) {
	r := DefaultPointsRates()

	tests := []struct {
		source, difficulty string
		want               int
		ok                 bool
	}{
		{SourceSectionRead, "Easy", 2, true},
		{SourceSectionRead, "Intermediate", 3, true},
		{SourceSectionRead, "ADVANCED", 5, true},
		{SourceModuleQuiz, "advanced", 4, true},
		{SourceModuleQuiz, "", 2, true},
		{SourceFinalQuiz, "easy", 2, true},
		{SourceFinalQuiz, "expert", 0, false},
		{"unknown", "easy", 0, false},
	}

	for _, tt := range tests {
		got, ok := r.RateFor(tt.source, tt.difficulty)
		if got != tt.want || ok != tt.ok {
			t.Errorf("RateFor(%q, %q) = (%d, %v), want (%d, %v)", tt.source, tt.difficulty, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPointsConfig_RoundTripRates(t *testing.T) {
	cfg := NewPointsConfig(DefaultPointsRates())
	cfg.FinalQuizPoints = PointsTable(`4`)
	cfg.FirstAttemptBonus = 0

	r, err := cfg.Rates()
	if err != nil {
		t.Fatalf("Rates: %v", err)
	}
	if r.FinalQuizPoints != (DifficultyPoints{4, 5, 6}) {
		t.Errorf("FinalQuizPoints = %+v, want {4 5 6}", r.FinalQuizPoints)
	}
	if r.FirstAttemptBonus != 1 {
		t.Errorf("FirstAttemptBonus = %v, want 1", r.FirstAttemptBonus)
	}
}

func TestAttemptKey(t *testing.T) {
	if got := AttemptKey(SourceModuleQuiz, "q42"); got != "module_quiz_q42" {
		t.Errorf("AttemptKey = %q", got)
	}
}

func TestPointsTable_ScanDriverValues(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "bytes", value: []byte(`{"easy":1,"intermediate":2,"advanced":3}`), want: `{"easy":1,"intermediate":2,"advanced":3}`},
		{name: "text", value: `5`, want: `5`},
		{name: "integer", value: int64(3), want: `3`},
		{name: "real", value: float64(2), want: `2`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p PointsTable
			if err := p.Scan(tt.value); err != nil {
				t.Fatalf("Scan(%v): %v", tt.value, err)
			}
			if string(p) != tt.want {
				t.Fatalf("scanned = %s, want %s", p, tt.want)
			}
		})
	}

	var p PointsTable
	if err := p.Scan(true); err == nil {
		t.Fatal("expected error for bool")
	}
	if err := p.Scan(nil); err != nil || p != nil {
		t.Fatalf("Scan(nil) = %v, %s", err, p)
	}

	var scanned PointsTable
	if err := scanned.Scan(int64(3)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	got, legacy, err := DecodeDifficultyPoints(scanned)
	if err != nil || !legacy || got != (DifficultyPoints{3, 4, 5}) {
		t.Fatalf("decode scanned integer = %+v legacy=%v err=%v", got, legacy, err)
	}
}
