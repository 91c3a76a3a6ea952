package core

import "testing"

func TestParseAmountToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"12", 1200, false},
		{".50", 50, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5.00", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmountToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmountToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAmountToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSignedAmountToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"-500.00", -50000, false},
		{"-0.01", -1, false},
		{"0", 0, false},
		{"+3.50", 350, false},
		{"--1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSignedAmountToCents(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSignedAmountToCents(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSignedAmountToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyFloat(t *testing.T) {
	if got := (Money{Cents: 1234}).Float(); got != 12.34 {
		t.Errorf("Float() = %v, want 12.34", got)
	}
	if got := (Money{Cents: -50}).Float(); got != -0.5 {
		t.Errorf("Float() = %v, want -0.5", got)
	}
}
