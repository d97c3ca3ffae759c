package catalog

import "testing"

func TestParsePriceCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		price   string
		want    int64
		wantErr bool
	}{
		{price: "19.99", want: 1999},
		{price: "20", want: 2000},
		{price: "0.5", want: 50},
		{price: ".75", want: 75},
		{price: " 3.10 ", want: 310},
		{price: "", wantErr: true},
		{price: "1.234", wantErr: true},
		{price: "-1.00", wantErr: true},
		{price: "1.", wantErr: true},
		{price: "abc", wantErr: true},
		{price: "1.-5", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePriceCents(tt.price)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParsePriceCents(%q) expected error, got %d", tt.price, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Fatalf("ParsePriceCents(%q) = %d, %v; want %d", tt.price, got, err, tt.want)
		}
	}
}
