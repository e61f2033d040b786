package pricing

import "testing"

func priceListDoc(instanceType, unit, usd string) string {
	return `{
		"product": {"attributes": {"instanceType": "` + instanceType + `"}},
		"terms": {"OnDemand": {"offer1": {"priceDimensions": {"dim1": {
			"unit": "` + unit + `",
			"pricePerUnit": {"USD": "` + usd + `"}
		}}}}}
	}`
}

func TestParsePriceListItem(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantType  string
		wantPrice float64
		wantOK    bool
	}{
		{
			name:      "valid hourly rate",
			input:     priceListDoc("c5.large", "Hrs", "0.0850000000"),
			wantType:  "c5.large",
			wantPrice: 0.085,
			wantOK:    true,
		},
		{
			name:   "non-hourly unit skipped",
			input:  priceListDoc("c5.large", "Quantity", "100"),
			wantOK: false,
		},
		{
			name:   "zero price skipped",
			input:  priceListDoc("c5.large", "Hrs", "0.0000000000"),
			wantOK: false,
		},
		{
			name:   "unparseable price skipped",
			input:  priceListDoc("c5.large", "Hrs", "n/a"),
			wantOK: false,
		},
		{
			name:   "missing instance type",
			input:  priceListDoc("", "Hrs", "0.085"),
			wantOK: false,
		},
		{
			name:   "malformed document",
			input:  `{"product": [`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, gotPrice, ok := parsePriceListItem(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if gotType != tt.wantType {
				t.Errorf("instanceType = %q, want %q", gotType, tt.wantType)
			}
			if gotPrice != tt.wantPrice {
				t.Errorf("price = %v, want %v", gotPrice, tt.wantPrice)
			}
		})
	}
}

func TestParsePriceListItem_KeepsFirstHourlyDimension(t *testing.T) {
	doc := `{
		"product": {"attributes": {"instanceType": "m5.large"}},
		"terms": {"OnDemand": {"offer1": {"priceDimensions": {
			"dimQuantity": {"unit": "Quantity", "pricePerUnit": {"USD": "50"}},
			"dimHourly": {"unit": "Hrs", "pricePerUnit": {"USD": "0.096"}}
		}}}}
	}`
	instanceType, price, ok := parsePriceListItem(doc)
	if !ok {
		t.Fatal("parsePriceListItem() = not ok")
	}
	if instanceType != "m5.large" || price != 0.096 {
		t.Errorf("got (%q, %v), want (m5.large, 0.096)", instanceType, price)
	}
}
