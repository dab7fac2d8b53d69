package bridge

import (
	"errors"
	"testing"
)

func TestKind_WireType(t *testing.T) {
	tests := []struct {
		kind Kind
		wire string
		name string
	}{
		{KindWeather, "meteo", "weather"},
		{KindAddress, "address", "address"},
	}
	for _, tt := range tests {
		if got := tt.kind.WireType(); got != tt.wire {
			t.Errorf("%v.WireType() = %q, want %q", tt.kind, got, tt.wire)
		}
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		k, ok := ParseKind(tt.wire)
		if !ok || k != tt.kind {
			t.Errorf("ParseKind(%q) = %v, %v", tt.wire, k, ok)
		}
	}
	if _, ok := ParseKind("weather"); ok {
		t.Error("ParseKind(weather) should fail")
	}
}

func TestMessage_Encode(t *testing.T) {
	data, err := NewMessage(KindWeather, `{"t":1}`).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := `{"type":"meteo","data":"{\"t\":1}"}`
	if string(data) != want {
		t.Errorf("Encode() = %s, want %s", data, want)
	}

	data, err = NullMessage(KindAddress).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(data) != `{"type":"address","data":null}` {
		t.Errorf("Encode() = %s", data)
	}
}

func TestParseMessage(t *testing.T) {
	m, err := ParseMessage([]byte(`{"type":"address","data":"x"}`))
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if k, _ := m.Kind(); k != KindAddress || m.Data == nil || *m.Data != "x" {
		t.Errorf("ParseMessage() = %+v", m)
	}

	m, err = ParseMessage([]byte(`{"type":"meteo","data":null}`))
	if err != nil || m.Data != nil {
		t.Errorf("null data: %+v, %v", m, err)
	}

	if _, err := ParseMessage([]byte(`{"type":"other"}`)); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v, want ErrUnknownType", err)
	}
	if _, err := ParseMessage([]byte(`{`)); err == nil {
		t.Error("malformed message should fail")
	}
}
