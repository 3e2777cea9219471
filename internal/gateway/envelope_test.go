package gateway

import "testing"

func TestDecodeEntriesRecognizedShapes(t *testing.T) {
	t.Parallel()

	raw := `[{"id":"c1","productId":"p1","quantity":2,"product":{"name":"Shoe","price":100000,"imageUrl":"u","seller":{"id":"s1","username":"ShoeShop"}}}]`

	tests := []struct {
		name string
		body string
		want int
		ok   bool
	}{
		{name: "bare collection", body: raw, want: 1, ok: true},
		{name: "wrapped collection", body: `{"data":` + raw + `}`, want: 1, ok: true},
		{name: "wrapped empty collection", body: `{"data":[]}`, want: 0, ok: true},
		{name: "bare empty collection", body: `[]`, want: 0, ok: true},
		{name: "object without data", body: `{"items":` + raw + `}`, ok: false},
		{name: "data holds non-collection", body: `{"data":"nope"}`, ok: false},
		{name: "empty body", body: ``, ok: false},
		{name: "plain string", body: `"hello"`, ok: false},
		{name: "invalid json", body: `{"data":[`, ok: false},
	}

	for _, tt := range tests {
		entries, ok := decodeEntries([]byte(tt.body))
		if ok != tt.ok {
			t.Fatalf("%s: expected ok=%v got %v", tt.name, tt.ok, ok)
		}
		if ok && len(entries) != tt.want {
			t.Fatalf("%s: expected %d entries got %d", tt.name, tt.want, len(entries))
		}
	}

	entries, ok := decodeEntries([]byte(`{"data":` + raw + `}`))
	if !ok || entries[0].ID != "c1" || entries[0].Product.Seller.Username != "ShoeShop" {
		t.Fatalf("wrapped entry fields not decoded: %+v", entries)
	}
}

func TestDecodeEntryRecognizedShapes(t *testing.T) {
	t.Parallel()

	raw := `{"id":"c1","productId":"p1","quantity":3,"product":{"name":"Shoe","price":100000,"imageUrl":"u","seller":{"id":"s1","username":"ShoeShop"}}}`

	if entry, ok := decodeEntry([]byte(raw)); !ok || entry.Quantity != 3 {
		t.Fatalf("bare entry not decoded: %+v ok=%v", entry, ok)
	}
	if entry, ok := decodeEntry([]byte(`{"data":` + raw + `}`)); !ok || entry.ID != "c1" {
		t.Fatalf("wrapped entry not decoded: %+v ok=%v", entry, ok)
	}
	if _, ok := decodeEntry(nil); ok {
		t.Fatal("empty body should not decode")
	}
	if _, ok := decodeEntry([]byte(`{}`)); ok {
		t.Fatal("object without id should count as absent")
	}
	if _, ok := decodeEntry([]byte(`{"data":{}}`)); ok {
		t.Fatal("wrapped object without id should count as absent")
	}
	if _, ok := decodeEntry([]byte(`[1,2]`)); ok {
		t.Fatal("collection is not a single entry")
	}
}
